/*
Package handler provides the HTTP handlers and routing for the CareLink
realtime server.

This file upgrades websocket connections. The handshake credential is
verified before the upgrade; a connection that fails authentication never
touches the presence table or any room.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"carelink/internal/app/rtc"
	"carelink/internal/pkg/auth/jwt"
	"carelink/internal/pkg/errs"
	"carelink/internal/pkg/limiter"
	"carelink/internal/pkg/logx"
	"carelink/internal/pkg/resp"
)

// HandleWebSocket processes websocket connection requests: rate limit,
// authenticate, upgrade, attach to the hub, then pump until disconnect.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: rate limit exceeded", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		claims, err := jwt.ParseToken(r.URL.Query().Get("token"), deps.Config.JWTSecret)
		if err != nil {
			// One generic rejection for every failure mode; which part of
			// verification failed is not the peer's business.
			logx.Warn("WebSocket connection rejected: authentication failed", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrAuthFailed))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		identity := rtc.Identity{
			UserID: claims.UserID,
			Role:   claims.Role,
		}

		client := deps.Hub.Attach(conn, identity)
		client.ReadPump()
	}
}
