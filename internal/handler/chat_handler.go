package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"carelink/internal/pkg/auth/jwt"
	"carelink/internal/pkg/errs"
	"carelink/internal/pkg/logx"
	"carelink/internal/pkg/resp"
)

// HandleSessionMessages returns the full message history of a session in
// send order. Clients load this once when opening a consultation, then
// stay current over the websocket.
func HandleSessionMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionKey := chi.URLParam(r, "sessionKey")
		if sessionKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		records, err := deps.Store.FindBySession(r.Context(), sessionKey)
		if err != nil {
			logx.Error(err, "Failed to load session messages", "session_key", sessionKey)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, records)
	}
}

// HandleMarkRead flags every message of the session addressed to the
// authenticated reader as read.
func HandleMarkRead(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionKey := chi.URLParam(r, "sessionKey")
		if sessionKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		claims := jwt.ClaimsFromContext(r)
		if claims == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAuthFailed))
			return
		}

		if err := deps.Hub.MarkRead(r.Context(), sessionKey, claims.UserID); err != nil {
			logx.Error(err, "Failed to mark session messages read",
				"session_key", sessionKey, "reader_id", claims.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{"status": "marked"})
	}
}
