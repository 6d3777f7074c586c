package core

import "errors"

var (
	ErrSlotUnavailable = errors.New("no free slot for requested role")
	ErrAlreadyJoined   = errors.New("connection already holds a slot in this lobby")
	ErrUnknownRole     = errors.New("unknown slot role")
)
