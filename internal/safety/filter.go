package safety

import "strings"

// No trailing space: a mangled "sudosudo ..." still counts as an elevation
// attempt, and correcting it to "sudo ..." must stay learnable.
const sudoPrefix = "sudo"

// Filter holds the negative constraints that veto learning and flag danger.
// The pattern lists come from configuration; the predicates themselves are
// fixed policy.
type Filter struct {
	dangerPatterns []string
	criticalPaths  []string
}

func NewFilter(dangerPatterns, criticalPaths []string) *Filter {
	return &Filter{
		dangerPatterns: dangerPatterns,
		criticalPaths:  criticalPaths,
	}
}

// Dangerous reports whether the command contains a destructive idiom
// (filesystem wipe, raw disk write, format invocation, fork bomb).
// Substring containment, not exact match.
func (f *Filter) Dangerous(command string) bool {
	for _, pattern := range f.dangerPatterns {
		if strings.Contains(command, pattern) {
			return true
		}
	}
	return false
}

// DangerousPattern returns the first destructive idiom found in the command,
// for use in verdict reasons.
func (f *Filter) DangerousPattern(command string) (string, bool) {
	for _, pattern := range f.dangerPatterns {
		if strings.Contains(command, pattern) {
			return pattern, true
		}
	}
	return "", false
}

// EscalatesPrivilege reports whether learning the (wrong, correct) pair
// would teach the tool to suggest elevation the user never attempted:
// the wrong command lacks the sudo prefix while the correction carries it.
func (f *Filter) EscalatesPrivilege(wrong, correct string) bool {
	return !strings.HasPrefix(wrong, sudoPrefix) && strings.HasPrefix(correct, sudoPrefix)
}

// TouchesCriticalPath reports whether the command names a filesystem-critical
// location as a standalone token: preceded by a space mid-string, or as the
// trailing token of the trimmed command.
func (f *Filter) TouchesCriticalPath(command string) bool {
	trimmed := strings.TrimRight(command, " \t")
	for _, path := range f.criticalPaths {
		if strings.Contains(command, " "+path+" ") {
			return true
		}
		if strings.HasSuffix(trimmed, " "+path) {
			return true
		}
	}
	return false
}

// VetoesLearning applies all three predicates to a candidate correction.
// Any hit is absolute: the learner must not create or reinforce a rule.
func (f *Filter) VetoesLearning(wrong, correct string) bool {
	if f.Dangerous(correct) {
		return true
	}
	if f.EscalatesPrivilege(wrong, correct) {
		return true
	}
	return f.TouchesCriticalPath(correct)
}
