package errs

import "net/http"

// errorMap maps business codes to their error templates. Status controls
// the REST surface only; websocket errors carry the code and message.
var errorMap = map[int]CustomError{
	ErrInvalidParams: {
		Code:    ErrInvalidParams,
		Message: "Invalid request parameters",
		Status:  http.StatusBadRequest,
	},
	ErrUnsupportedMediaType: {
		Code:    ErrUnsupportedMediaType,
		Message: "Unsupported Content-Type, expected application/json",
		Status:  http.StatusUnsupportedMediaType,
	},
	ErrInvalidJSONFormat: {
		Code:    ErrInvalidJSONFormat,
		Message: "Malformed JSON in request body",
		Status:  http.StatusBadRequest,
	},
	ErrRateLimitExceeded: {
		Code:    ErrRateLimitExceeded,
		Message: "Too many requests, slow down",
		Status:  http.StatusTooManyRequests,
	},
	ErrMessageBodyEmpty: {
		Code:    ErrMessageBodyEmpty,
		Message: "Message has no content",
		Status:  http.StatusBadRequest,
	},
	ErrReceiverMissing: {
		Code:    ErrReceiverMissing,
		Message: "Message has no receiver",
		Status:  http.StatusBadRequest,
	},
	ErrMessageTooLong: {
		Code:    ErrMessageTooLong,
		Message: "Message content exceeds the maximum length",
		Status:  http.StatusBadRequest,
	},
	ErrMessageNotSaved: {
		Code:    ErrMessageNotSaved,
		Message: "Failed to send message",
		Status:  http.StatusInternalServerError,
	},
	ErrAttachmentCountInvalid: {
		Code:    ErrAttachmentCountInvalid,
		Message: "A message may carry at most %d attachments",
		Status:  http.StatusBadRequest,
	},
	ErrAttachmentKeyInvalid: {
		Code:    ErrAttachmentKeyInvalid,
		Message: "Attachment key does not belong to this session",
		Status:  http.StatusBadRequest,
	},
	ErrFileSizeTooLarge: {
		Code:    ErrFileSizeTooLarge,
		Message: "File exceeds the maximum allowed size",
		Status:  http.StatusBadRequest,
	},
	ErrFileTypeInvalid: {
		Code:    ErrFileTypeInvalid,
		Message: "File type is not allowed",
		Status:  http.StatusBadRequest,
	},
	ErrAuthFailed: {
		Code:    ErrAuthFailed,
		Message: "Authentication error",
		Status:  http.StatusUnauthorized,
	},
	ErrUnknown: {
		Code:    ErrUnknown,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	},
}
