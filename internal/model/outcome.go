package model

import (
	"fmt"
	"strings"
)

// OutcomeKind is the severity of a provisioning outcome entry.
type OutcomeKind string

const (
	// OutcomeKindOK indicates an informational entry.
	OutcomeKindOK OutcomeKind = "OK"
	// OutcomeKindWarning indicates the operation succeeded with a warning.
	OutcomeKindWarning OutcomeKind = "WARNING"
	// OutcomeKindError indicates the operation failed.
	OutcomeKindError OutcomeKind = "ERROR"
)

// Outcome is a single entry reported by a provisioning operation.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

func (o Outcome) String() string { return fmt.Sprintf("%s: %s", o.Kind, o.Message) }

// Outcomes is the ordered list of entries reported by a provisioning operation.
// An empty list means success.
type Outcomes []Outcome

// HasErrors returns true if any entry has an error kind. Warnings alone never fail an operation.
func (o Outcomes) HasErrors() bool {
	for _, e := range o {
		if e.Kind == OutcomeKindError {
			return true
		}
	}
	return false
}

// CountByKind counts entries by kind.
func (o Outcomes) CountByKind() (ok, warnings, errors int) {
	for _, e := range o {
		switch e.Kind {
		case OutcomeKindOK:
			ok++
		case OutcomeKindWarning:
			warnings++
		case OutcomeKindError:
			errors++
		}
	}
	return
}

func (o Outcomes) String() string {
	msgs := make([]string, 0, len(o))
	for _, e := range o {
		msgs = append(msgs, e.String())
	}
	return "[" + strings.Join(msgs, "; ") + "]"
}

// ParseOutcomeKind normalizes the kind names reported by provisioning tools.
func ParseOutcomeKind(s string) OutcomeKind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return OutcomeKindError
	case "WARNING", "WARN":
		return OutcomeKindWarning
	default:
		return OutcomeKindOK
	}
}
