package planner

// Gems that left the Ruby default set in 3.4 and 3.5 and must now be declared.
var bundledGems = []string{
	"abbrev", "base64", "benchmark", "bigdecimal", "csv", "drb", "fiddle",
	"getoptlong", "irb", "logger", "mutex_m", "nkf", "observer", "ostruct",
	"pstore", "racc", "rdoc", "readline", "reline", "resolv-replace", "rinda",
	"syslog", "win32ole",
}

// DefaultTemplates returns the built-in fix templates.
func DefaultTemplates() []FixTemplate {
	allowed := make(map[string]bool, len(bundledGems))
	for _, g := range bundledGems {
		allowed[g] = true
	}

	return []FixTemplate{
		{
			SignatureID: "ruby-missing-stdlib-gem",
			Comment:     "no longer a default gem since Ruby 3.4",
			Allowed:     allowed,
		},
		{
			SignatureID: "bundler-gem-not-found",
		},
	}
}
