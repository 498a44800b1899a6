package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"kanban/internal/service"
)

// optString is a string flag that records whether it was given, so an
// explicit empty value can clear a field.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// ptr returns nil when the flag was not given.
func (o *optString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// optBool is a boolean flag that records whether it was given.
type optBool struct {
	value bool
	set   bool
}

func (o *optBool) String() string { return strconv.FormatBool(o.value) }

func (o *optBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	o.value = v
	o.set = true
	return nil
}

func (o *optBool) IsBoolFlag() bool { return true }

func (o *optBool) ptr() *bool {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// optInt is an int flag that records whether it was given.
type optInt struct {
	value int
	set   bool
}

func (o *optInt) String() string { return strconv.Itoa(o.value) }

func (o *optInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	o.value = v
	o.set = true
	return nil
}

func (o *optInt) ptr() *int {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// parsePriority validates a --priority value.
func parsePriority(s string) (service.Priority, error) {
	p, ok := service.ParsePriority(strings.ToLower(strings.TrimSpace(s)))
	if !ok {
		return "", fmt.Errorf("invalid priority: %s (want low, medium, high or urgent)", s)
	}
	return p, nil
}

// parseStatus validates a --status value. "in-progress" is accepted for
// in_progress.
func parseStatus(s string) (service.TaskStatus, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	st, ok := service.ParseStatus(norm)
	if !ok {
		return "", fmt.Errorf("invalid status: %s (want todo, in_progress, review or done)", s)
	}
	return st, nil
}

// parseDue parses a --due value in YYYY-MM-DD form.
func parseDue(s string) (*service.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid due date: %s (want YYYY-MM-DD)", s)
	}
	return service.TimeRef(t), nil
}

// parseTags splits a comma-separated --tags value, dropping empty entries.
func parseTags(s string) []string {
	tags := []string{}
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
