package users

import "errors"

var (
	// ErrNotFound means the requested account does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSelfDelete means an admin tried to delete their own account.
	ErrSelfDelete = errors.New("cannot delete your own admin account")
	// ErrProctorBusy means the proctor still has hackathons assigned.
	ErrProctorBusy = errors.New("cannot delete proctor with assigned hackathons, reassign hackathons first")
	// ErrDuplicate means the email or register number is already taken.
	ErrDuplicate = errors.New("account already exists")
	// ErrBadCredentials means email/password did not match.
	ErrBadCredentials = errors.New("invalid email or password")
)
