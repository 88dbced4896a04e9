package domain

import "errors"

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrWriteFailed  = errors.New("write failed")
	ErrCorruptStore = errors.New("task store content is corrupt")

	ErrInvalidTaskPayload = errors.New("invalid task payload")
)
