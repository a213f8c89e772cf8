package web

// messages.go maps technical errors to user-facing messages with a support
// code. Codes are grouped by category:
//
//	REQ001-REQ099  request errors
//	SRC001-SRC099  record source errors
//	EXP001-EXP099  export errors
//	RATE001        request throttling
//	ERR000         fallback when nothing matches
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage is what a user sees for a failed request.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Request Errors (REQ001-REQ004)
	// =========================================================================
	{
		pattern: "invalid sort direction",
		msg: UserMessage{
			Message: "Sort direction must be asc or desc",
			Action:  "Pick a sort direction from the table header",
			Code:    "REQ001",
		},
	},
	{
		pattern: "invalid form",
		msg: UserMessage{
			Message: "The filter form could not be read",
			Action:  "Reload the page and try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ004",
		},
	},

	// =========================================================================
	// Source Errors (SRC001-SRC002)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the vehicle database",
			Action:  "Please try again in a few moments",
			Code:    "SRC001",
		},
	},
	{
		pattern: "no data loaded",
		msg: UserMessage{
			Message: "The vehicle list has not loaded yet",
			Action:  "Wait for the table to fill and try again",
			Code:    "SRC002",
		},
	},

	// =========================================================================
	// Export Errors (EXP001-EXP004)
	// =========================================================================
	{
		pattern: "too many exports",
		msg: UserMessage{
			Message: "Other exports are still running",
			Action:  "Please wait a moment and try again",
			Code:    "EXP004",
		},
	},
	{
		pattern: "upload export",
		msg: UserMessage{
			Message: "The export could not be uploaded",
			Action:  "Check the bucket configuration or download the CSV instead",
			Code:    "EXP001",
		},
	},
	{
		pattern: "export dir",
		msg: UserMessage{
			Message: "The export folder is not writable",
			Action:  "Check the export directory permissions",
			Code:    "EXP002",
		},
	},
	{
		pattern: "export",
		msg: UserMessage{
			Message: "The export could not be written",
			Action:  "Please try again or download the CSV instead",
			Code:    "EXP003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message. Unmatched
// errors get the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
