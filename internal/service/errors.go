package service

import (
	"strings"
)

// ValidationError lists every field-level problem found in one input.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

type fieldErrors []string

func (f *fieldErrors) add(msg string) {
	*f = append(*f, msg)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
