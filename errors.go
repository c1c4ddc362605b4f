package gocircular

import (
	"errors"
	"fmt"
)

// Fatal failure kinds. Operations wrap these with context, so test for them
// with errors.Is.
var (
	// ErrValidation reports malformed shapes or parameters.
	ErrValidation = errors.New("validation failed")
	// ErrNormalization reports a normalizing constant that is numerically zero.
	ErrNormalization = errors.New("normalizing constant is numerically zero")
	// ErrUnsupported reports an operation requested against an encoding that
	// does not support it.
	ErrUnsupported = errors.New("operation not supported for this encoding")
	// ErrDegenerateWeights reports importance weights whose total collapsed
	// to zero.
	ErrDegenerateWeights = errors.New("weights sum is numerically zero")
)

// Warning is a non-fatal diagnostic returned when a result was obtained
// through an approximate or fallback path instead of an exact analytic one.
// The accompanying result is valid and usable.
type Warning struct {
	Op  string
	Msg string
}

// Error implements the error interface.
func (w *Warning) Error() string {
	return fmt.Sprintf("%s: %s", w.Op, w.Msg)
}

// IsWarning returns whether err only signals approximation, i.e. the result
// it came with may be used. A nil error is not a warning.
func IsWarning(err error) bool {
	if err == nil {
		return false
	}
	var w *Warning
	return errors.As(err, &w)
}

// warnf builds a Warning for the given operation.
func warnf(op, format string, args ...any) error {
	return &Warning{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// checkSameLen checks that two slices have the same length. Returns a
// validation error if not.
func checkSameLen(name1 string, s1 []float64, name2 string, s2 []float64) error {
	if len(s1) != len(s2) {
		return fmt.Errorf("%w: len(%s)=%d must equal len(%s)=%d", ErrValidation, name1, len(s1), name2, len(s2))
	}
	return nil
}

// checkCoeffCount checks that a total coefficient count is odd and positive:
// one DC term plus matching cosine/sine pairs.
func checkCoeffCount(count int) error {
	if count < 1 || count%2 == 0 {
		return fmt.Errorf("%w: coefficient count %d must be odd and positive", ErrValidation, count)
	}
	return nil
}
