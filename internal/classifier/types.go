package classifier

import "regexp"

// MatchKind selects how a rule pattern is applied.
type MatchKind string

const (
	MatchSubstring MatchKind = "substring"
	MatchRegex     MatchKind = "regex"
)

// Rule is one declarative entry of the rule table.
type Rule struct {
	ID          string  `yaml:"id"`
	Description string  `yaml:"description"`
	Match       Matcher `yaml:"match"`
	Extract     string  `yaml:"extract,omitempty"`
}

// Matcher decides whether a rule fires on a text.
type Matcher struct {
	Kind    MatchKind `yaml:"kind"`
	Pattern string    `yaml:"pattern"`
}

// RuleFile is the on-disk layout of a rule table.
type RuleFile struct {
	Rules []Rule `yaml:"rules"`
}

// compiledRule is a rule ready for scanning.
type compiledRule struct {
	Rule
	match   *regexp.Regexp // nil for substring rules
	extract *regexp.Regexp // nil when the rule has no extractor
}

// Table is an ordered, compiled rule table. It is immutable once built.
type Table struct {
	rules []compiledRule
}

// Len returns the number of rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// IDs returns rule ids in table order.
func (t *Table) IDs() []string {
	ids := make([]string, 0, t.Len())
	if t == nil {
		return ids
	}
	for _, r := range t.rules {
		ids = append(ids, r.ID)
	}
	return ids
}
