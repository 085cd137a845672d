package ics

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceNotFound   = errors.New("source not found")
	ErrSourceUnreadable = errors.New("source unreadable")
	ErrMalformedRow     = errors.New("malformed row")
	ErrInvalidDate      = errors.New("invalid date")
	ErrTargetIsSource   = errors.New("output would overwrite the source")
)

// RowError ties a row-scoped failure to its place in the source.
type RowError struct {
	Line   int
	Fields []string
	Err    error
}

func (e *RowError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("line %d [%s]: %v", e.Line, strings.Join(e.Fields, " | "), e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
