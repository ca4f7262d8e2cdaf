// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrInvalidRepoRef is returned when a repository reference is neither
// a github.com URL nor an 'owner/name' slug.
type ErrInvalidRepoRef struct {
	Ref string
}

func (e *ErrInvalidRepoRef) Error() string {
	return fmt.Sprintf("invalid repository reference: %q, expected 'owner/name' or a GitHub URL", e.Ref)
}

// ErrRepositoryNotFound is returned when the primary repository
// metadata fetch fails. It aborts the whole analysis.
type ErrRepositoryNotFound struct {
	Owner string
	Name  string
	Err   error
}

func (e *ErrRepositoryNotFound) Error() string {
	return fmt.Sprintf("repository %s/%s not found", e.Owner, e.Name)
}

func (e *ErrRepositoryNotFound) Unwrap() error {
	return e.Err
}

// ErrRecordNotFound is returned when a persisted analysis id does not
// exist in the store.
var ErrRecordNotFound = errors.New("analysis record not found")
