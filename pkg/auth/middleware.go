package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/messhall/pkg/httpx"
	"github.com/ghuser/messhall/pkg/logger"
)

const sessionName = "messhall_session"
const sessionStationIDKey = "station_id"

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It reads the session cookie, extracts the StationID, and injects it into the request context.
// Returns 401 Unauthorized if the session is missing, invalid, or lacks a valid station_id.
//
// After this middleware, handlers can safely call auth.StationIDFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			stationIDStr, ok := session.Values[sessionStationIDKey].(string)
			if !ok || stationIDStr == "" {
				log.WarnContext(r.Context(), "session missing station_id")
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			stationID, err := uuid.Parse(stationIDStr)
			if err != nil {
				log.WarnContext(r.Context(), "invalid station_id in session", "station_id", stationIDStr, "error", err)
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid session data"})
				return
			}

			ctx := WithStationID(r.Context(), stationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
