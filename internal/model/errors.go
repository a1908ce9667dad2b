package model

import "errors"

// ErrNotFound is returned when an item is not found in the store.
var ErrNotFound = errors.New("item not found")

// ErrEmptyTitle is returned when an item is created or updated with a blank title.
var ErrEmptyTitle = errors.New("title cannot be empty")
