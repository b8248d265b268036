package domain

import "errors"

// ErrConversationNotFound is returned when a conversation id has no checkpoint.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrConversationEnded is returned when a message arrives for a conversation
// that has already terminated. A new problem requires a new conversation id.
var ErrConversationEnded = errors.New("conversation already ended")
