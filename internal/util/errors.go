package util

import "errors"

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrEmptyText       = errors.New("original text must not be empty")
	ErrEmptyAudio      = errors.New("audio buffer must not be empty")
)
