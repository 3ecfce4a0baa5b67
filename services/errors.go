package services

import (
	"errors"

	"github.com/Yuki-gilty/drone-manager/database"
	"github.com/Yuki-gilty/drone-manager/remote"
)

// Common service-level errors
var (
	// Auth errors
	ErrInvalidCredentials = remote.NewError(remote.ErrAuthRequired, "invalid username or password")
	ErrUsernameTaken      = remote.NewError(remote.ErrAlreadyExists, "username already exists")
	ErrUserNotFound       = remote.NewError(remote.ErrAuthRequired, "user not found")

	ErrNothingToUpdate  = remote.NewError(remote.ErrValidation, "nothing to update")
	ErrPhotoNotFound    = remote.NewError(remote.ErrNotFound, "photo not found")
	ErrPracticeDayTaken = remote.NewError(remote.ErrAlreadyExists, "a practice day is already recorded for this date")
)

func notFound(what string) error {
	return remote.NewError(remote.ErrNotFound, "%s not found", what)
}

// invalidReference reports an id in a request body that does not name one of
// the user's rows.
func invalidReference(what string) error {
	return remote.NewError(remote.ErrValidation, "invalid %s", what)
}

func referenced(message string) error {
	return remote.NewError(remote.ErrReferenced, "%s", message)
}

// invalid wraps validator errors so they carry the validation kind.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return &remote.Error{Kind: remote.ErrValidation, Message: err.Error()}
}

// fromDB maps repository sentinels to user-facing errors about what.
func fromDB(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return notFound(what)
	case errors.Is(err, database.ErrDuplicate):
		return remote.NewError(remote.ErrAlreadyExists, "%s already exists", what)
	case errors.Is(err, database.ErrForeignKey):
		return remote.NewError(remote.ErrReferenced, "%s is referenced by other data", what)
	}
	return err
}

// checkPatch rejects empty and malformed partial updates.
func checkPatch(empty bool, err error) error {
	if empty {
		return ErrNothingToUpdate
	}
	return invalid(err)
}
