// Package manifest knows just enough Gemfile syntax to tell whether a gem is
// declared and to render a new declaration.
package manifest

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
)

var (
	gemDeclPattern = regexp.MustCompile(`^gem\s*\(?\s*["']([^"']+)["']`)
	gemNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
)

// ValidName reports whether name is a syntactically valid gem name.
func ValidName(name string) bool {
	return gemNamePattern.MatchString(name)
}

// Declares reports whether content already declares gem name. Whitespace, quote
// style, version constraints and trailing comments are ignored; commented-out
// lines do not count.
func Declares(content, name string) bool {
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if DeclaredName(sc.Text()) == name {
			return true
		}
	}
	return false
}

// DeclaredName returns the gem declared on line, or "" when the line is not a
// gem declaration.
func DeclaredName(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	m := gemDeclPattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Declaration renders a gem line, with an optional trailing comment.
func Declaration(name, comment string) string {
	if comment == "" {
		return fmt.Sprintf("gem %q", name)
	}
	return fmt.Sprintf("gem %q # %s", name, comment)
}
