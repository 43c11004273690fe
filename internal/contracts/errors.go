package contracts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyUniverse is fatal: no candidate qualified
	ErrEmptyUniverse = errors.New("empty universe: no assets qualify")

	// ErrSymbolNotFound is returned when an upstream does not know the symbol or pair
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrNoData is returned when an upstream answers with an empty series
	ErrNoData = errors.New("no data returned")

	// ErrTooManyNulls rejects a candidate whose null close fraction exceeds the gate
	ErrTooManyNulls = errors.New("too many null closes")
)

// Attempt records one query tried while acquiring a symbol
type Attempt struct {
	Source string `json:"source"`
	Query  string `json:"query"`
	Err    error  `json:"-"`
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s %s: %v", a.Source, a.Query, a.Err)
}

// NoDataAvailableError is returned after every candidate and the fallback failed
type NoDataAvailableError struct {
	Symbol   string
	Attempts []Attempt
}

func (e *NoDataAvailableError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.String()
	}
	return fmt.Sprintf("no data available for %s after %d attempts [%s]", e.Symbol, len(e.Attempts), strings.Join(parts, "; "))
}

// Unwrap exposes each attempt's cause to errors.Is / errors.As
func (e *NoDataAvailableError) Unwrap() []error {
	out := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			out = append(out, a.Err)
		}
	}
	return out
}
