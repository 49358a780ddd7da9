package evaluator

import (
	"fmt"

	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

// ConversionError reports an object that does not denote a type.
type ConversionError struct {
	Object typesystem.Object
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("could not convert %s to a type: %s", inspect(e.Object), e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// ApplicationError reports a function applied to an input it cannot take.
type ApplicationError struct {
	Func   typesystem.Object
	Input  typesystem.Object
	Reason string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s: %s applied to %s", e.Reason, inspect(e.Func), inspect(e.Input))
}

// BudgetError reports an evaluation stopped by a depth, step or time limit.
type BudgetError struct {
	Reason string
	Err    error
}

func (e *BudgetError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *BudgetError) Unwrap() error {
	return e.Err
}

const (
	reasonParamsDisagree = "params don't agree"
	reasonNotImplemented = "not implemented: apply function"
)

func newConversionError(obj typesystem.Object, format string, a ...interface{}) *ConversionError {
	return &ConversionError{Object: obj, Reason: fmt.Sprintf(format, a...)}
}

func inspect(o typesystem.Object) string {
	if o == nil {
		return "<nil>"
	}
	return o.Inspect()
}
