package referenceframe

import (
	"github.com/pkg/errors"
)

// ErrFrameMismatch is returned when two poses measured in different origin frames are combined.
var ErrFrameMismatch = errors.New("poses are measured in different frames")

// NewFrameMismatchError returns an error indicating that poses from the two named frames cannot be combined.
func NewFrameMismatchError(a, b string) error {
	return errors.Wrapf(ErrFrameMismatch, "%q vs %q", a, b)
}
