package commands

import "testing"

func TestRegistrySuggest(t *testing.T) {
	r := NewRegistry()
	for _, c := range []Command{&BoardsCmd{}, &BoardCmd{}, &ShowCmd{}, &DoneCmd{}} {
		if err := r.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		input string
		want  string
	}{
		{"bord", "board"},
		{"borads", "boards"},
		{"shwo", "show"},
		{"Done", "done"},
		{"zzzzzz", ""},
	}
	for _, tt := range tests {
		if got := r.Suggest(tt.input); got != tt.want {
			t.Errorf("Suggest(%q) = %q, expected %q", tt.input, got, tt.want)
		}
	}
}

func TestRegistry_DuplicateAlias(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&BoardCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&BoardCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestDefaultRegistry_Aliases(t *testing.T) {
	for alias, name := range map[string]string{
		"me": "whoami", "show-board": "board", "addboard": "mkboard",
		"share": "addmember", "cols": "columns", "create": "add",
	} {
		cmd, ok := DefaultRegistry.Find(alias)
		if !ok || cmd.Name() != name {
			t.Errorf("Find(%q): expected %s", alias, name)
		}
	}
}

func TestNeedsService(t *testing.T) {
	tests := []struct {
		cmd  Command
		want bool
	}{
		{&BoardsCmd{}, true},
		{&LoginCmd{}, true},
		{&RegisterCmd{}, true},
		{&LogoutCmd{}, true},
		{&HelpCmd{}, false},
		{&VersionCmd{}, false},
		{&GoogleLoginCmd{}, false},
	}
	for _, tt := range tests {
		if got := NeedsService(tt.cmd); got != tt.want {
			t.Errorf("NeedsService(%s) = %v, expected %v", tt.cmd.Name(), got, tt.want)
		}
	}
}
