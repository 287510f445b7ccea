package domain

import "fmt"

// Rule routes any file whose name contains Keyword (case-insensitive) to the
// Destination subfolder. Rules are evaluated in order and the first match wins.
type Rule struct {
	Keyword     string `json:"keyword" yaml:"keyword" validate:"required,max=255"`
	Destination string `json:"destination" yaml:"destination" validate:"required,max=255,localpath"`
}

// String renders the rule the way the rule list displays it.
func (r Rule) String() string {
	return fmt.Sprintf("'%s' --> %s", r.Keyword, r.Destination)
}
