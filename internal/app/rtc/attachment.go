package rtc

import (
	"path/filepath"
	"strings"
	"time"

	"carelink/internal/pkg/errs"
)

const (
	// MaxAttachmentSizeMB is the maximum attachment size in megabytes.
	MaxAttachmentSizeMB = 10

	// MaxAttachmentSize is the maximum attachment size in bytes.
	MaxAttachmentSize = MaxAttachmentSizeMB * 1024 * 1024

	// MaxAttachmentsCount is the maximum number of attachments per message.
	MaxAttachmentsCount = 3

	// PresignedURLDuration is how long presigned upload/download URLs stay valid.
	PresignedURLDuration = 5 * time.Minute
)

// AllowedMIMETypes lists permitted attachment types: images plus PDF, since
// consultations exchange lab reports and prescriptions.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// ExtToMIME maps file extensions to their expected MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// Attachment references an object already uploaded to storage. Only the
// key travels in messages; bytes go through presigned URLs.
type Attachment struct {
	Key      string `json:"fileKey"`
	Name     string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"fileSize"`
}

// ValidateFileSize checks the declared size against the limit.
func ValidateFileSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if fileSize > MaxAttachmentSize {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}
	return nil
}

// ValidateFileType checks that the MIME type is allowed and matches the
// file extension.
func ValidateFileType(fileName, mimeType string) *errs.CustomError {
	lowerMime := strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[lowerMime]; !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	expected, ok := ExtToMIME[ext]
	if !ok || expected != lowerMime {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	return nil
}

// validateAttachments checks count, session scoping, and type for every
// attachment of a send request. Keys must live under the session's prefix
// so one session cannot reference another's files.
func validateAttachments(sessionKey string, attachments []Attachment) *errs.CustomError {
	if len(attachments) > MaxAttachmentsCount {
		return errs.NewError(errs.ErrAttachmentCountInvalid, MaxAttachmentsCount)
	}

	prefix := sessionKey + "/"
	for _, a := range attachments {
		if !strings.HasPrefix(a.Key, prefix) {
			return errs.NewError(errs.ErrAttachmentKeyInvalid)
		}
		if customErr := ValidateFileType(a.Name, a.MimeType); customErr != nil {
			return customErr
		}
		if customErr := ValidateFileSize(a.Size); customErr != nil {
			return customErr
		}
	}

	return nil
}
