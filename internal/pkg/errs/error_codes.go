/*
Package errs provides custom error types and application-level error code constants.

The codes identify protocol and request failures both in server logs and in the
notices sent back to chat clients and status API callers.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates that the connection or request rate exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrLineTooLong indicates that a client sent a line larger than the configured maximum.
	ErrLineTooLong = 1008
)

// 2xxx: Chat Protocol Errors
const (
	// ErrInputError indicates a command with missing or malformed arguments.
	ErrInputError = 2001

	// ErrUnknownCommand indicates an empty command or an unrecognized command letter.
	ErrUnknownCommand = 2002

	// ErrUserNotFound indicates that a private message targeted a name nobody is using.
	ErrUserNotFound = 2101

	// ErrSelfMessage indicates that a user tried to send a private message to their own name.
	ErrSelfMessage = 2102

	// ErrMessageNotSent indicates that no recipient session accepted a private message.
	ErrMessageNotSent = 2103

	// ErrEncoding indicates that a received line was not valid UTF-8.
	ErrEncoding = 2201

	// ErrEncodingNotSent indicates an invalid UTF-8 line received after the handshake.
	ErrEncodingNotSent = 2202

	// ErrEmptyName indicates that the handshake received a blank user name.
	ErrEmptyName = 2301
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
