package entity

import "errors"

var (
	ErrPersonNotFound     = errors.New("person not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidPersonData  = errors.New("invalid person data")
	ErrInvalidTaskData    = errors.New("invalid task data")
	ErrInvalidSort        = errors.New("invalid sort property")
	ErrIntentionalFailure = errors.New("this is for testing the error handler")
)
