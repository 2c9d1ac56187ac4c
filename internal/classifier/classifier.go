package classifier

import (
	"strings"
	"sync/atomic"

	"autoremedy/internal/model"
)

const maxEvidenceLen = 240

// RuleClassifier classifies text against a swappable rule table.
type RuleClassifier struct {
	table atomic.Pointer[Table]
}

var _ Classifier = (*RuleClassifier)(nil)

// New creates a RuleClassifier. A nil table falls back to the built-in one.
func New(table *Table) *RuleClassifier {
	if table == nil {
		table = DefaultTable()
	}
	c := &RuleClassifier{}
	c.table.Store(table)
	return c
}

// Table returns the table currently in use.
func (c *RuleClassifier) Table() *Table {
	return c.table.Load()
}

// Swap replaces the rule table for subsequent Classify calls.
func (c *RuleClassifier) Swap(table *Table) {
	if table != nil {
		c.table.Store(table)
	}
}

// Classify scans text with every rule in table order.
func (c *RuleClassifier) Classify(text string) []model.ErrorFinding {
	findings := make([]model.ErrorFinding, 0)
	if strings.TrimSpace(text) == "" {
		return findings
	}

	seen := make(map[string]bool)
	add := func(f model.ErrorFinding) {
		if seen[f.Key()] {
			return
		}
		seen[f.Key()] = true
		findings = append(findings, f)
	}

	for _, r := range c.table.Load().rules {
		idx := r.firstMatch(text)
		if idx < 0 {
			continue
		}

		if r.extract == nil {
			add(model.ErrorFinding{
				SignatureID:     r.ID,
				EvidenceSnippet: lineAt(text, idx),
				Confidence:      model.ConfidenceHeuristic,
			})
			continue
		}

		extracted := false
		for _, loc := range r.extract.FindAllStringSubmatchIndex(text, -1) {
			if loc[2] < 0 {
				continue
			}
			token := NormalizeToken(text[loc[2]:loc[3]])
			if token == "" {
				continue
			}
			extracted = true
			add(model.ErrorFinding{
				SignatureID:     r.ID,
				EvidenceSnippet: lineAt(text, loc[0]),
				ExtractedToken:  token,
				Confidence:      model.ConfidenceExact,
			})
		}

		if !extracted {
			add(model.ErrorFinding{
				SignatureID:     r.ID,
				EvidenceSnippet: lineAt(text, idx),
				Confidence:      model.ConfidenceHeuristic,
			})
		}
	}

	return findings
}

// firstMatch returns the byte offset of the first match, or -1.
func (r compiledRule) firstMatch(text string) int {
	if r.match != nil {
		loc := r.match.FindStringIndex(text)
		if loc == nil {
			return -1
		}
		return loc[0]
	}
	return strings.Index(text, r.Match.Pattern)
}

// NormalizeToken reduces a raw capture to a bare dependency name:
// surrounding quotes and parentheses are dropped, only the first word is kept,
// and a required path such as "rexml/document" maps to its root "rexml".
func NormalizeToken(raw string) string {
	token := strings.Trim(strings.TrimSpace(raw), `'"()`+"`")
	if fields := strings.Fields(token); len(fields) > 0 {
		token = fields[0]
	} else {
		return ""
	}
	token = strings.Trim(token, `'"()[]:;,.`+"`")
	if i := strings.IndexByte(token, '/'); i >= 0 {
		token = token[:i]
	}
	return token
}

// lineAt returns the trimmed line containing offset, capped for log output.
func lineAt(text string, offset int) string {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += offset
	}
	line := strings.TrimSpace(text[start:end])
	if len(line) > maxEvidenceLen {
		line = line[:maxEvidenceLen]
	}
	return line
}
