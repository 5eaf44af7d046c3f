package ingest

// messages.go maps technical errors to user-friendly messages with support
// codes. When users encounter errors, they can quote the error code to
// support staff for faster diagnosis.
//
// Error codes are grouped by category:
//
//	FMT001  - Unsupported format: the filename suffix is not .csv or .xlsx
//	FILE001 - File too large: upload exceeds the configured size limit
//	FILE002 - Invalid CSV: file is not well-formed delimited text
//	FILE003 - Invalid workbook: file is not a readable xlsx workbook
//	FILE004 - No file: no file was selected
//	FILE005 - Empty file: the upload has no header row
//	FILE006 - Duplicate columns: the header repeats a column name
//	SNAP001 - Snapshot failure: the normalized copy could not be written
//	ING001  - System busy: too many uploads in progress
//	ING002  - Request cancelled
//	ING003  - Request timeout
//	DS001   - Dataset not found: unknown or expired dataset ID
//	RATE001 - Rate limited: too many requests
//	ERR000  - Unknown error (fallback; check logs for the original error)
//
// Patterns are matched case-insensitively with strings.Contains, first match
// wins, so more specific patterns must come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a .csv or .xlsx file (the suffix is case-sensitive)",
			Code:    "FMT001",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "duplicate column name",
		msg: UserMessage{
			Message: "The file header repeats a column name",
			Action:  "Rename columns so every header is unique",
			Code:    "FILE006",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with a header row and data rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid workbook",
		msg: UserMessage{
			Message: "File is not a readable Excel workbook",
			Action:  "Re-save the file as .xlsx and try again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a .csv or .xlsx file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "snapshot",
		msg: UserMessage{
			Message: "The normalized copy of your file could not be saved",
			Action:  "Please try again in a few moments",
			Code:    "SNAP001",
		},
	},
	{
		pattern: "too many concurrent ingests",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "ING001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "ING002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "ING003",
		},
	},
	{
		pattern: "dataset not found",
		msg: UserMessage{
			Message: "Dataset not found",
			Action:  "The dataset may have been removed. Upload the file again",
			Code:    "DS001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000). Support staff
// should check application logs for the original technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. It returns
// the first matching pattern, or the ERR000 fallback.
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

// FormatUserError renders an error for display as
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matched a specific pattern rather than
// the generic fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
