package table

import (
	"errors"
	"fmt"
)

// ErrMissingColumn matches every MissingColumnError through errors.Is.
var ErrMissingColumn = errors.New("missing column")

// MissingColumnError names a required column that a table lacks.
type MissingColumnError struct {
	Column string
	Table  string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column '%s' in %s", e.Column, e.Table)
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}
