package typesystem

import "fmt"

// UnboundNameError is returned when a name has no binding in the
// environment it is resolved against.
type UnboundNameError struct {
	Name string
}

func (e *UnboundNameError) Error() string {
	return fmt.Sprintf("%s is not bound", e.Name)
}
