package services

import "errors"

// Domain error taxonomy. These are detected and reported through the
// acknowledgment path (WebSocket ack frames, HTTP error bodies); they never
// escape an event handler as a panic. Store-layer errors are deliberately
// NOT wrapped into these so callers can tell infrastructure failure apart
// from domain-rule rejection.
var (
	// ErrMissingData is returned when an event arrives with a null or
	// incomplete payload.
	ErrMissingData = errors.New("Data is null")

	// ErrInvalidUser is returned when the sending user does not exist.
	ErrInvalidUser = errors.New("Invalid user")

	// ErrInvalidReceiver is returned when the recipient is not in the
	// sender's contact list.
	ErrInvalidReceiver = errors.New("Invalid receiver")

	// ErrEmptyIdentifier is returned by the presence registry when given a
	// blank socket id.
	ErrEmptyIdentifier = errors.New("Socket id can't be empty")

	// ErrUsernameTaken is returned on registration with an existing username.
	ErrUsernameTaken = errors.New("The username already exists")

	// ErrInvalidCredentials covers bad login input and failed verification.
	ErrInvalidCredentials = errors.New("Invalid username or password")

	// ErrInvalidContact is returned when adding an unknown contact.
	ErrInvalidContact = errors.New("Invalid contact username")

	// ErrContactExists is returned when adding a contact twice.
	ErrContactExists = errors.New("The contact is already in the contact list")
)
