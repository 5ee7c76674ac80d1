package tracking

import (
	"context"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/piresc/trackmybus/services/tracking LocationRepo

// LocationRepo is the keyed latest-value store holding one current record per bus.
// Backend failures are wrapped with models.ErrStoreUnavailable.
type LocationRepo interface {
	// Upsert replaces the whole record stored for busID
	Upsert(ctx context.Context, busID string, record *models.BusLocationRecord) error
	// Get returns nil, nil when the bus has no record
	Get(ctx context.Context, busID string) (*models.BusLocationRecord, error)
	// GetMany reads all ids in one round trip; absent ids map to nil
	GetMany(ctx context.Context, busIDs []string) (map[string]*models.BusLocationRecord, error)
	// StopSharing clears the sharing flag and records stoppedAt in one atomic update.
	// found is false and nothing is written when the bus has no record.
	StopSharing(ctx context.Context, busID string, stoppedAt time.Time) (found bool, err error)
}
