package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every *Error.
var ErrValidation = errors.New("mzml: validation failed")

// Rule identifies the check a Violation failed.
type Rule string

// Rules reported in violations.
const (
	RuleExactlyOne  Rule = "exactly-one"
	RuleAtLeastOne  Rule = "at-least-one"
	RuleAtMostOne   Rule = "at-most-one"
	RuleDisallowed  Rule = "disallowed"
	RuleUnknownUnit Rule = "unknown-unit"
	RuleGroupRef    Rule = "unresolved-group-ref"
)

// Violation is one failed check on one element.
type Violation struct {
	// Path locates the element, e.g. `spectrum[scan=1]/scanList/scan[0]`.
	Path string
	Kind Kind
	Rule Rule
	// Parent is the rule's parent accession, empty for per-term checks.
	Parent string
	// Accessions are the offending terms: the matches for cardinality
	// rules, or the single term for per-term checks.
	Accessions []string
	// Allowed holds the descendants of Parent.
	Allowed []string
}

func (v Violation) String() string {
	switch v.Rule {
	case RuleExactlyOne:
		if len(v.Accessions) == 0 {
			return fmt.Sprintf("%s: one term under %s is required, found none", v.Path, v.Parent)
		}
		return fmt.Sprintf("%s: exactly one term under %s is allowed, found %s", v.Path, v.Parent, strings.Join(v.Accessions, ", "))
	case RuleAtLeastOne:
		return fmt.Sprintf("%s: at least one term under %s is required", v.Path, v.Parent)
	case RuleAtMostOne:
		return fmt.Sprintf("%s: at most one term under %s is allowed, found %s", v.Path, v.Parent, strings.Join(v.Accessions, ", "))
	case RuleDisallowed:
		return fmt.Sprintf("%s: term %s is not allowed on <%s>", v.Path, strings.Join(v.Accessions, ", "), v.Kind)
	case RuleUnknownUnit:
		return fmt.Sprintf("%s: unit %s is not defined", v.Path, strings.Join(v.Accessions, ", "))
	case RuleGroupRef:
		return fmt.Sprintf("%s: referenceableParamGroup %s is not declared", v.Path, strings.Join(v.Accessions, ", "))
	default:
		return fmt.Sprintf("%s: %s", v.Path, v.Rule)
	}
}

// Error reports the violations found on one record or document shell.
type Error struct {
	// Element names what was validated, e.g. `spectrum "scan=1"` or "shell".
	Element    string
	Violations []Violation
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mzml: %s: %d vocabulary violation", e.Element, len(e.Violations))
	if len(e.Violations) != 1 {
		b.WriteByte('s')
	}
	for _, v := range e.Violations {
		b.WriteString("; ")
		b.WriteString(v.String())
	}
	return b.String()
}

// Is reports whether target is ErrValidation.
func (e *Error) Is(target error) bool {
	return target == ErrValidation
}
