// Package apperr defines the sentinel errors shared between the service
// layer, the realtime core and the HTTP handlers, so callers can map an
// outcome to a status code with errors.Is instead of string matching.
package apperr

import "fmt"

var (
	ErrUserExists         = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrChatNotFound       = fmt.Errorf("chat not found")
	ErrNotMember          = fmt.Errorf("user is not a member of the chat")
	ErrForbidden          = fmt.Errorf("operation allowed for the chat creator only")
	ErrNotRemoved         = fmt.Errorf("user is not in the removed members list")
	ErrAlreadyMember      = fmt.Errorf("user is already in the group")
	ErrInvalidCredentials = fmt.Errorf("invalid password or email")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
	ErrInvalidFrame       = fmt.Errorf("malformed frame")
	ErrNotGroup           = fmt.Errorf("operation allowed for group chats only")
)
