package out

import (
	"context"
	"time"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

// LocationRepository owns the append-only history log.
type LocationRepository interface {
	AppendHistory(ctx context.Context, busID int64, lat, lng, speed float64, now time.Time) error

	// QueryHistory returns up to limit samples within the lookback
	// window, newest first.
	QueryHistory(ctx context.Context, busID int64, hoursBack, limit int) ([]domain.LocationSample, error)
}
