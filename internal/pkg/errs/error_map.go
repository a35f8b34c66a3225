package errs

import "net/http"

// errorMap holds the client-facing message and HTTP status for every error code.
// A zero Status means 200 with a non-zero business code in the JSON envelope.
var errorMap = map[int]CustomError{
	// 1xxx: request handling
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Request body is not valid JSON.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: folder and question business logic
	ErrFolderNotFound:      {Code: ErrFolderNotFound, Message: "Folder not found.", Status: http.StatusNotFound},
	ErrFolderNameInvalid:   {Code: ErrFolderNameInvalid, Message: "Folder name must be between 1 and %d characters.", Status: http.StatusBadRequest},
	ErrQuestionNotFound:    {Code: ErrQuestionNotFound, Message: "Question not found.", Status: http.StatusNotFound},
	ErrQuestionBodyInvalid: {Code: ErrQuestionBodyInvalid, Message: "Question body must not be empty.", Status: http.StatusBadRequest},

	// 3xxx: identity
	ErrUnauthorized: {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx: internal
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
