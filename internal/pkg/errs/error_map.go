/*
Package errs provides custom error types and application-level error code constants.

This file maps every code to its CustomError template. Messages are the exact text
a chat client sees; templates with %s take printf-style details.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many connections. Please try again later.", Status: http.StatusTooManyRequests},
	ErrLineTooLong:       {Code: ErrLineTooLong, Message: "The line is too long."},

	// 2xxx: Chat Protocol Errors
	ErrInputError:      {Code: ErrInputError, Message: "Input error"},
	ErrUnknownCommand:  {Code: ErrUnknownCommand, Message: "Unknown command or input error"},
	ErrUserNotFound:    {Code: ErrUserNotFound, Message: "User %s not found", Status: http.StatusNotFound},
	ErrSelfMessage:     {Code: ErrSelfMessage, Message: "You can't send a message to yourself!"},
	ErrMessageNotSent:  {Code: ErrMessageNotSent, Message: "The message for the [%s] was not sent"},
	ErrEncoding:        {Code: ErrEncoding, Message: "Only utf-8 encoding is supported."},
	ErrEncodingNotSent: {Code: ErrEncodingNotSent, Message: "Only utf-8 encoding is supported. The message has not been sent."},
	ErrEmptyName:       {Code: ErrEmptyName, Message: "The name can't be empty."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
