package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kanjisim/model"
)

// ErrInvalidK is returned when k is negative.
var ErrInvalidK = errors.New("index: k must not be negative")

// ErrNodeNotFound is returned when the query ID is not in the index.
type ErrNodeNotFound struct {
	ID model.ID
}

func (e *ErrNodeNotFound) Error() string {
	return fmt.Sprintf("index: %s not found", e.ID)
}

// ErrNodeExcluded is returned when the query ID is known but excluded from
// similarity search.
type ErrNodeExcluded struct {
	ID model.ID
}

func (e *ErrNodeExcluded) Error() string {
	return fmt.Sprintf("index: %s is excluded from similarity search", e.ID)
}
