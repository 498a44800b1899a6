package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Raw string // the reference as given, trimmed
	Num int    // task number if Raw is all digits and fits an int, else 0
}

// IsNumber reports whether the reference is written as a task number.
func (r TaskRef) IsNumber() bool {
	return isAllDigits(r.Raw)
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the task reference in args[0].
//
// Parsing rules:
//  1. No argument, or a blank one → ErrTaskRefRequired
//  2. All digits → a number, which is a position when --board is given and
//     a task ID otherwise; range is checked only against a board
//  3. Anything without whitespace → a task ID
//  4. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	raw := strings.TrimSpace(args[0])

	if isAllDigits(raw) {
		// An overflowing value keeps Num 0 and is still usable as an ID.
		num, _ := strconv.Atoi(raw)
		return TaskRef{Raw: raw, Num: num}, nil
	}

	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", raw)
	}
	return TaskRef{Raw: raw}, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
