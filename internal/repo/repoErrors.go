package repo

import "errors"

var (
	ErrPollNotFound = errors.New("poll not found")
	ErrLikeNotFound = errors.New("like not found")
	ErrLikeExists   = errors.New("like already exists")
)
