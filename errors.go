package cp3d

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the errors a space can raise.
type ErrorKind int

const (
	InvalidShapeParameter ErrorKind = iota + 1
	DanglingConstraintReference
	DegenerateConstraint
	NumericInstability
	CapacityExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidShapeParameter:
		return "invalid shape parameter"
	case DanglingConstraintReference:
		return "dangling constraint reference"
	case DegenerateConstraint:
		return "degenerate constraint"
	case NumericInstability:
		return "numeric instability"
	case CapacityExhausted:
		return "capacity exhausted"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is raised by the space for a single body or constraint. Only
// CapacityExhausted and InvalidShapeParameter are returned to callers, the
// rest are reported through the ErrorHandler while the tick carries on.
type Error struct {
	Kind       ErrorKind
	Body       BodyID
	Constraint ConstraintID
	Msg        string
}

func (e *Error) Error() string {
	s := "cp3d: " + e.Kind.String()
	if e.Body != 0 {
		s += fmt.Sprintf(" (body %v)", e.Body)
	}
	if e.Constraint != 0 {
		s += fmt.Sprintf(" (constraint %v)", e.Constraint)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrDegenerateConstraint) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidShapeParameter       = &Error{Kind: InvalidShapeParameter}
	ErrDanglingConstraintReference = &Error{Kind: DanglingConstraintReference}
	ErrDegenerateConstraint        = &Error{Kind: DegenerateConstraint}
	ErrNumericInstability          = &Error{Kind: NumericInstability}
	ErrCapacityExhausted           = &Error{Kind: CapacityExhausted}

	ErrClosed           = errors.New("cp3d: space is closed")
	ErrNoSuchBody       = errors.New("cp3d: no such body")
	ErrNoSuchConstraint = errors.New("cp3d: no such constraint")
	ErrInvalidTransform = errors.New("cp3d: transform is not finite")
)

// ErrorHandler receives recoverable errors raised during a tick. It is called
// with the space lock held and must not call back into the space.
type ErrorHandler func(err *Error)

func invalidShape(format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: InvalidShapeParameter, Msg: fmt.Sprintf(format, args...)})
}
