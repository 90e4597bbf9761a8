package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const stationIDKey contextKey = "station_id"

// ErrStationIDNotFound is returned when no StationID exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrStationIDNotFound = errors.New("station_id not found in context")

// StationIDFromCtx extracts the authenticated station ID from the request context.
// Returns uuid.Nil and ErrStationIDNotFound if no StationID is set (unauthenticated request).
func StationIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	stationID, ok := ctx.Value(stationIDKey).(uuid.UUID)
	if !ok || stationID == uuid.Nil {
		return uuid.Nil, ErrStationIDNotFound
	}
	return stationID, nil
}

// WithStationID returns a new context with the given StationID attached.
// Used by authentication middleware after validating the session.
func WithStationID(ctx context.Context, stationID uuid.UUID) context.Context {
	return context.WithValue(ctx, stationIDKey, stationID)
}
