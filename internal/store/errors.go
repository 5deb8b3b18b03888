package store

import "errors"

var (
	ErrNotFound        = errors.New("dream not found")
	ErrEmptyUserID     = errors.New("user id must not be empty")
	ErrImageAlreadySet = errors.New("dream already has an image")
)
