package importer

// messages.go maps technical errors to user-facing messages with a support
// code. Codes are grouped by prefix:
//
//	FILE001-FILE005  file size, format, parsing and presence
//	IMP001-IMP002    row-level duplicate and validation problems
//	DB001-DB006      database constraints and connectivity
//	UPL002-UPL005    import slots, cancellation and timeouts
//	AUTH001          missing or unknown credentials
//	RATE001          too many requests from one client
//	ERR000           fallback; check the logs for the original error
//
// Sentinel errors are matched first with errors.Is. Anything else falls
// through to case-insensitive substring patterns, first match wins.

import (
	"context"
	"errors"
	"strings"
)

// ErrUnauthorized is returned when a request cannot be tied to a user.
var ErrUnauthorized = errors.New("authentication required")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the export into smaller files",
		Code:    "FILE001",
	}
	msgUnsupported = UserMessage{
		Message: "File type is not supported",
		Action:  "Upload an .xls, .xlsx or .csv export",
		Code:    "FILE002",
	}
	msgParse = UserMessage{
		Message: "The file could not be read",
		Action:  "Check the file opens in a spreadsheet program and has a header row and data rows",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a file to upload",
		Code:    "FILE004",
	}
	msgEmpty = UserMessage{
		Message: "There are no rows to import",
		Action:  "Upload a file with a header row and at least one data row",
		Code:    "FILE005",
	}
	msgDuplicate = UserMessage{
		Message: "A drill with this name already exists",
		Action:  "Rename the drill or remove the row",
		Code:    "IMP001",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}
	msgUnauthorized = UserMessage{
		Message: "You are not signed in",
		Action:  "Sign in and try again",
		Code:    "AUTH001",
	}
)

// sentinelMessages is consulted before the pattern table.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrUnsupportedFormat, msgUnsupported},
	{ErrEmptyFile, msgEmpty},
	{ErrParse, msgParse},
	{ErrNoRows, msgEmpty},
	{ErrDuplicate, msgDuplicate},
	{ErrTooManyImports, msgBusy},
	{ErrUnauthorized, msgUnauthorized},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is matched with strings.Contains against the lowercased
// error text. Specific patterns must precede general ones.
var errorPatterns = []errorPattern{
	{pattern: "no file provided", msg: msgNoFile},
	{
		pattern: "is required",
		msg: UserMessage{
			Message: "A required value is missing",
			Action:  "Fill in the category and name for every row",
			Code:    "IMP002",
		},
	},
	{
		pattern: "must be a non-negative number",
		msg: UserMessage{
			Message: "A value has the wrong format",
			Action:  "Use whole minutes such as 15",
			Code:    "IMP002",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Review the failed rows for duplicates",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Review the failed rows for duplicates",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced category does not exist",
			Action:  "Please try the import again",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates check constraint",
		msg: UserMessage{
			Message: "A value is out of the allowed range",
			Action:  "Check minutes are zero or more",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
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
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message. It returns
// the zero UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}
