package errs

// 1xxx: General request handling errors
const (
	// ErrInvalidParams indicates request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates an unsupported Content-Type header.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed JSON request body.
	ErrInvalidJSONFormat = 1003

	// ErrRateLimitExceeded indicates the client exceeded the request rate limit.
	ErrRateLimitExceeded = 1004
)

// 2xxx: Messaging errors
const (
	// ErrMessageBodyEmpty indicates a send with no text and no attachments.
	ErrMessageBodyEmpty = 2001

	// ErrReceiverMissing indicates a send without a receiver id.
	ErrReceiverMissing = 2002

	// ErrMessageTooLong indicates the message body exceeded the size limit.
	ErrMessageTooLong = 2003

	// ErrMessageNotSaved indicates the message could not be durably stored.
	// The message was NOT delivered; the client may resubmit.
	ErrMessageNotSaved = 2101

	// ErrAttachmentCountInvalid indicates too many attachments on one message.
	ErrAttachmentCountInvalid = 2201

	// ErrAttachmentKeyInvalid indicates an attachment key outside the
	// sender's session prefix.
	ErrAttachmentKeyInvalid = 2202

	// ErrFileSizeTooLarge indicates an attachment above the size limit.
	ErrFileSizeTooLarge = 2203

	// ErrFileTypeInvalid indicates a file type that is not allowed.
	ErrFileTypeInvalid = 2204
)

// 3xxx: Authentication errors
const (
	// ErrAuthFailed covers every credential verification failure. The code
	// is deliberately not split further so clients cannot probe which part
	// of verification rejected them.
	ErrAuthFailed = 3001
)

// 5xxx: Internal errors
const (
	// ErrUnknown is the unclassified internal server error.
	ErrUnknown = 5000
)
