package analyzer

import "fmt"

// ParamError reports an invalid lambda parameter declaration.
type ParamError struct {
	Name   string
	Reason string
	Err    error
}

func (e *ParamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("param %q: %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("param %q: %s", e.Name, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

func newParamError(name, reason string) *ParamError {
	return &ParamError{Name: name, Reason: reason}
}
