/*
Package randx provides identifier generation for chat sessions.
*/
package randx

import (
	"github.com/google/uuid"
)

// SessionID generates a UUID v4 string identifying one accepted connection.
// Two connections never share an ID, even when they log in under the same name
// or arrive from the same remote address.
func SessionID() string {
	return uuid.New().String()
}

