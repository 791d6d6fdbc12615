package errors

import "errors"

var (
	// ErrChannelNotFound is returned when a channel row is not found
	ErrChannelNotFound = errors.New("channel not found")

	// ErrChannelAlreadyExists is returned when a channel is added twice
	ErrChannelAlreadyExists = errors.New("channel already exists")

	// ErrInvalidUsername is returned when a channel username is malformed
	ErrInvalidUsername = errors.New("invalid channel username")
)
