package morpho

import (
	"errors"
	"fmt"
)

// ErrMalformedLine is returned when a dictionary line is not "form lemma+POS..."
var ErrMalformedLine = errors.New("malformed dictionary line")

/*
LineError reports the position of a malformed dictionary line
*/
type LineError struct {
	File string
	Line int
	Text string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.File, e.Line, ErrMalformedLine, e.Text)
}

func (e *LineError) Unwrap() error {
	return ErrMalformedLine
}
