package classifier

import "errors"

var (
	ErrEmptyTable     = errors.New("rule table is empty")
	ErrInvalidRule    = errors.New("invalid rule")
	ErrDuplicateRule  = errors.New("duplicate rule id")
	ErrRuleFileFormat = errors.New("malformed rule file")
)
