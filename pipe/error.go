package pipe

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidState is returned if pipe method cannot be executed at this moment.
	ErrInvalidState = errors.New("invalid state")
	// ErrNoGenerator is returned if pipe is created without generator.
	ErrNoGenerator = errors.New("pipe has no generator")
	// ErrNoSink is returned if pipe is created without sink.
	ErrNoSink = errors.New("pipe has no sink")
	// ErrNoResampler is returned if rates don't match and there is no
	// resampler to convert them.
	ErrNoResampler = errors.New("pipe has no resampler")
	// ErrInvalidRatio is returned if resampling ratio is not a positive
	// finite number.
	ErrInvalidRatio = errors.New("invalid resampling ratio")
)

// ErrorRun is returned if pipe was successfully started, but execution
// and/or flush failed.
type ErrorRun struct {
	ErrExec  error
	ErrFlush error
}

func (e *ErrorRun) Error() string {
	switch {
	case e.ErrExec != nil && e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v after execute error: %v", e.ErrFlush, e.ErrExec)
	case e.ErrExec != nil:
		return fmt.Sprintf("execute error: %v", e.ErrExec)
	case e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v", e.ErrFlush)
	}
	return ""
}

// Is checks if any of errors match provided sentinel error.
func (e *ErrorRun) Is(err error) bool {
	if e.ErrExec != nil && errors.Is(e.ErrExec, err) {
		return true
	}
	if e.ErrFlush != nil && errors.Is(e.ErrFlush, err) {
		return true
	}
	return false
}

// execErrors wraps errors that might occure when multiple components
// fail to flush.
type execErrors []error

func (e execErrors) Error() string {
	s := []string{}
	for _, se := range e {
		s = append(s, se.Error())
	}
	return strings.Join(s, ",")
}

// Is checks if any of wrapped errors match provided sentinel error.
func (e execErrors) Is(err error) bool {
	for _, se := range e {
		if errors.Is(se, err) {
			return true
		}
	}
	return false
}

// ret returns untyped nil if error is list is empty.
func (e execErrors) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}
