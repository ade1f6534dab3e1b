package grammar

import (
	"errors"
	"fmt"
)

var (
	ErrCatalog      = errors.New("grammar: malformed rule catalog")
	ErrGrammarStuck = errors.New("grammar: rewriting made no progress")
)

// CatalogError describes a rule that failed validation
type CatalogError struct {
	Category string
	Rule     string
	Reason   string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("grammar: rule %s/%s: %s", e.Category, e.Rule, e.Reason)
}

// Unwrap lets errors.Is match ErrCatalog
func (e *CatalogError) Unwrap() error {
	return ErrCatalog
}

func catalogErr(r Rule, format string, args ...any) error {
	return &CatalogError{Category: r.Category, Rule: r.Name, Reason: fmt.Sprintf(format, args...)}
}
