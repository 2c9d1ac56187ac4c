package classifier

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// DefaultTable returns the built-in rule table.
func DefaultTable() *Table {
	t, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("classifier: built-in rule table is invalid: %v", err))
	}
	return t
}

// LoadRules reads and compiles a rule table from a YAML file.
// An empty path yields the built-in table.
func LoadRules(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file %s: %w", path, err)
	}
	t, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseRules compiles a YAML rule table.
func ParseRules(data []byte) (*Table, error) {
	var f RuleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleFileFormat, err)
	}
	return Compile(f.Rules)
}

// Compile validates rules and builds a table preserving their order.
func Compile(rules []Rule) (*Table, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyTable
	}

	seen := make(map[string]bool, len(rules))
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: rule %d has no id", ErrInvalidRule, i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, r.ID)
		}
		seen[r.ID] = true

		if r.Match.Pattern == "" {
			return nil, fmt.Errorf("%w: %s has an empty pattern", ErrInvalidRule, r.ID)
		}

		cr := compiledRule{Rule: r}
		switch r.Match.Kind {
		case MatchSubstring, "":
			cr.Match.Kind = MatchSubstring
		case MatchRegex:
			re, err := regexp.Compile(r.Match.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, r.ID, err)
			}
			cr.match = re
		default:
			return nil, fmt.Errorf("%w: %s has unknown match kind %q", ErrInvalidRule, r.ID, r.Match.Kind)
		}

		if r.Extract != "" {
			re, err := regexp.Compile(r.Extract)
			if err != nil {
				return nil, fmt.Errorf("%w: %s extractor: %v", ErrInvalidRule, r.ID, err)
			}
			if re.NumSubexp() < 1 {
				return nil, fmt.Errorf("%w: %s extractor needs a capture group", ErrInvalidRule, r.ID)
			}
			cr.extract = re
		}

		compiled = append(compiled, cr)
	}

	return &Table{rules: compiled}, nil
}
