package app

import "errors"

var (
	// ErrNotFound covers absent users in user-facing flows.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyBound rejects a connection that has not left its current lobby.
	ErrAlreadyBound = errors.New("connection already bound to a lobby")
	// ErrNotBound rejects lobby operations from an unbound connection.
	ErrNotBound = errors.New("connection not bound to a lobby")
	// ErrIntegrity marks store corruption: a membership list references a
	// document that does not exist. Never swallowed.
	ErrIntegrity = errors.New("store integrity violation")
)
