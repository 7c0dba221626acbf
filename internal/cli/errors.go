package cli

import (
	"errors"
	"fmt"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// IsNotFound reports whether err came from a lookup of an unknown id.
func IsNotFound(err error) bool {
	var nf notFoundError
	return errors.As(err, &nf)
}

var errLastTask = errors.New("refusing to delete the only active task")

var errNeedsConfirm = errors.New("this overwrites stored data; re-run with --yes to confirm")
