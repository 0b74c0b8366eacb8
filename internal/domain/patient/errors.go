package patient

import "errors"

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrDuplicateEmail  = errors.New("email already registered")
)
