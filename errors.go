package kanjisim

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kanjisim/index"
	"github.com/hupe1980/kanjisim/model"
)

var (
	// ErrNotFound is returned when a record is not in the dataset.
	ErrNotFound = errors.New("not found")

	// ErrExcluded is returned when a similarity query names a record that is
	// excluded from the index (its variant edge closed a cycle).
	ErrExcluded = errors.New("excluded from similarity search")

	// ErrInvalidK is returned when k is negative.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("engine closed")
)

// NotFoundError names the record that was not found.
// It matches ErrNotFound with errors.Is.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type NotFoundError struct {
	ID    model.ID
	cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("kanji %s (%s) not found", e.ID, e.ID.Literal())
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) Unwrap() error { return e.cause }

// ExcludedError names a record excluded from similarity search.
// It matches ErrExcluded with errors.Is.
type ExcludedError struct {
	ID    model.ID
	cause error
}

func (e *ExcludedError) Error() string {
	return fmt.Sprintf("kanji %s (%s) is excluded from similarity search", e.ID, e.ID.Literal())
}

func (e *ExcludedError) Is(target error) bool { return target == ErrExcluded }

func (e *ExcludedError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var nf *index.ErrNodeNotFound
	if errors.As(err, &nf) {
		return &NotFoundError{ID: nf.ID, cause: err}
	}
	var ex *index.ErrNodeExcluded
	if errors.As(err, &ex) {
		return &ExcludedError{ID: ex.ID, cause: err}
	}
	if errors.Is(err, index.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}

	return err
}
