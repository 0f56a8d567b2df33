package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"carelink/internal/app/rtc"
	"carelink/internal/pkg/errs"
	"carelink/internal/pkg/logx"
	"carelink/internal/pkg/req"
	"carelink/internal/pkg/resp"
)

type PresignUploadInput struct {
	// SessionKey scopes the object key; attachments live under their
	// session's prefix.
	SessionKey string `json:"sessionKey"`
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	FileSize   int64  `json:"fileSize"`
}

// HandlePresignUpload validates the declared file and hands out a
// presigned PUT URL. Bytes never pass through this server.
func HandlePresignUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input PresignUploadInput

		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.SessionKey == "" || strings.Contains(input.SessionKey, "/") {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if customErr := rtc.ValidateFileType(input.FileName, input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := rtc.ValidateFileSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ext := strings.ToLower(filepath.Ext(input.FileName))
		fileKey := input.SessionKey + "/" + uuid.NewString() + ext

		uploadURL, err := deps.StorageService.PresignUpload(
			r.Context(), fileKey, input.MimeType, input.FileSize, rtc.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "Failed to presign upload", "file_key", fileKey)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": uploadURL,
			"fileKey":   fileKey,
		})
	}
}

// HandlePresignDownload hands out a presigned GET URL for a stored
// attachment key.
func HandlePresignDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileKey := r.URL.Query().Get("key")
		if fileKey == "" || strings.Contains(fileKey, "..") {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		downloadURL, err := deps.StorageService.PresignDownload(r.Context(), fileKey, rtc.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "Failed to presign download", "file_key", fileKey)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"downloadUrl": downloadURL,
		})
	}
}
