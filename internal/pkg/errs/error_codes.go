package errs

// 1xxx: request handling
const (
	// ErrInvalidParams indicates request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates an unsupported Content-Type header.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed JSON request body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates the per-IP request budget was exhausted.
	ErrRateLimitExceeded = 1005
)

// 2xxx: folder and question business logic
const (
	// ErrFolderNotFound indicates the requested folder does not exist.
	ErrFolderNotFound = 2001

	// ErrFolderNameInvalid indicates an empty or oversized folder name.
	ErrFolderNameInvalid = 2002

	// ErrQuestionNotFound indicates the requested question does not exist in the folder.
	ErrQuestionNotFound = 2101

	// ErrQuestionBodyInvalid indicates an empty or oversized question body.
	ErrQuestionBodyInvalid = 2102
)

// 3xxx: identity
const (
	// ErrUnauthorized indicates the request carried no valid identity token.
	ErrUnauthorized = 3001
)

// 5xxx: internal
const (
	// ErrUnknown is the catch-all internal server error.
	ErrUnknown = 5000
)
