package xmlshape

import "fmt"

func (e ErrParseError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("%s at line %d, column %d", e.Err, e.LineNumber, e.Column)
	}
	return fmt.Sprintf(
		"%s at line %d, column %d\n -> '%s' <-- around here",
		e.Err,
		e.LineNumber,
		e.Column,
		e.Line,
	)
}

func (e ErrParseError) Unwrap() error {
	return e.Err
}
