package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	nr "github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/trackmybus/internal/pkg/constants"
	"github.com/piresc/trackmybus/internal/pkg/database"
	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/internal/pkg/newrelic"
	"github.com/piresc/trackmybus/services/tracking"
)

// stopSharingScript updates the flag and stop time only when the record exists,
// so a stop-sharing signal never creates a half-filled hash
var stopSharingScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	redis.call('HSET', KEYS[1], ARGV[1], '0', ARGV[2], ARGV[3])
	return 1
end
return 0
`)

type redisLocationRepo struct {
	redisClient *database.RedisClient
}

// NewRedisLocationRepo stores each bus as one hash at bus:location:{busId}
func NewRedisLocationRepo(redisClient *database.RedisClient) tracking.LocationRepo {
	return &redisLocationRepo{
		redisClient: redisClient,
	}
}

func locationKey(busID string) string {
	return fmt.Sprintf(constants.KeyBusLocation, busID)
}

// Upsert replaces the hash inside MULTI so no reader sees a mix of two records
func (r *redisLocationRepo) Upsert(ctx context.Context, busID string, record *models.BusLocationRecord) error {
	key := locationKey(busID)
	fields := encodeRecord(record)

	return newrelic.WithDatastoreSegment(ctx, nr.DatastoreRedis, "bus_location", "UPSERT", func() error {
		_, err := r.redisClient.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, fields)
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: upsert %s: %w", models.ErrStoreUnavailable, busID, err)
		}
		return nil
	})
}

// Get returns the record or nil when the hash does not exist
func (r *redisLocationRepo) Get(ctx context.Context, busID string) (*models.BusLocationRecord, error) {
	var values map[string]string
	err := newrelic.WithDatastoreSegment(ctx, nr.DatastoreRedis, "bus_location", "HGETALL", func() error {
		var err error
		values, err = r.redisClient.Client.HGetAll(ctx, locationKey(busID)).Result()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", models.ErrStoreUnavailable, busID, err)
	}
	return decodeOrDrop(ctx, busID, values), nil
}

// GetMany pipelines one HGETALL per distinct id
func (r *redisLocationRepo) GetMany(ctx context.Context, busIDs []string) (map[string]*models.BusLocationRecord, error) {
	result := make(map[string]*models.BusLocationRecord, len(busIDs))
	if len(busIDs) == 0 {
		return result, nil
	}

	cmds := make(map[string]*redis.StringStringMapCmd, len(busIDs))
	err := newrelic.WithDatastoreSegment(ctx, nr.DatastoreRedis, "bus_location", "PIPELINE_HGETALL", func() error {
		_, err := r.redisClient.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range busIDs {
				if _, seen := cmds[id]; seen {
					continue
				}
				cmds[id] = pipe.HGetAll(ctx, locationKey(id))
			}
			return nil
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get many: %w", models.ErrStoreUnavailable, err)
	}

	for id, cmd := range cmds {
		result[id] = decodeOrDrop(ctx, id, cmd.Val())
	}
	return result, nil
}

// StopSharing clears the sharing field and stamps the stop time without reading the record first
func (r *redisLocationRepo) StopSharing(ctx context.Context, busID string, stoppedAt time.Time) (bool, error) {
	var updated int64
	err := newrelic.WithDatastoreSegment(ctx, nr.DatastoreRedis, "bus_location", "EVALSHA", func() error {
		var err error
		updated, err = stopSharingScript.Run(ctx, r.redisClient.Client,
			[]string{locationKey(busID)},
			constants.FieldSharing, constants.FieldStoppedAt, millisField(stoppedAt)).Int64()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("%w: stop sharing %s: %w", models.ErrStoreUnavailable, busID, err)
	}
	return updated == 1, nil
}

// decodeOrDrop treats an unreadable hash as absent so the next accepted report replaces it
func decodeOrDrop(ctx context.Context, busID string, values map[string]string) *models.BusLocationRecord {
	if len(values) == 0 {
		return nil
	}
	record, err := decodeRecord(busID, values)
	if err != nil {
		logger.ErrorCtx(ctx, "Dropping corrupt location record",
			logger.String("bus_id", busID),
			logger.Err(err))
		return nil
	}
	return record
}

func encodeRecord(record *models.BusLocationRecord) map[string]interface{} {
	fields := map[string]interface{}{
		constants.FieldLatitude:   strconv.FormatFloat(record.Latitude, 'f', -1, 64),
		constants.FieldLongitude:  strconv.FormatFloat(record.Longitude, 'f', -1, 64),
		constants.FieldCapturedAt: millisField(record.CapturedAt),
		constants.FieldReceivedAt: millisField(record.ReceivedAt),
		constants.FieldSessionID:  record.ReporterSessionID,
		constants.FieldSharing:    boolField(record.SharingEnabled),
	}
	if record.Accuracy != nil {
		fields[constants.FieldAccuracy] = strconv.FormatFloat(*record.Accuracy, 'f', -1, 64)
	}
	if record.Geohash != "" {
		fields[constants.FieldGeohash] = record.Geohash
	}
	if record.StoppedAt != nil {
		fields[constants.FieldStoppedAt] = millisField(*record.StoppedAt)
	}
	return fields
}

func decodeRecord(busID string, values map[string]string) (*models.BusLocationRecord, error) {
	lat, err := strconv.ParseFloat(values[constants.FieldLatitude], 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt latitude for %s: %w", busID, err)
	}
	lng, err := strconv.ParseFloat(values[constants.FieldLongitude], 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt longitude for %s: %w", busID, err)
	}
	capturedAt, err := strconv.ParseInt(values[constants.FieldCapturedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt captured_at for %s: %w", busID, err)
	}
	receivedAt, err := strconv.ParseInt(values[constants.FieldReceivedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt received_at for %s: %w", busID, err)
	}

	record := &models.BusLocationRecord{
		BusID:             busID,
		Latitude:          lat,
		Longitude:         lng,
		CapturedAt:        models.UnixMilli(capturedAt),
		ReceivedAt:        models.UnixMilli(receivedAt),
		ReporterSessionID: values[constants.FieldSessionID],
		SharingEnabled:    values[constants.FieldSharing] == "1",
		Geohash:           values[constants.FieldGeohash],
	}
	if raw, ok := values[constants.FieldAccuracy]; ok && raw != "" {
		acc, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt accuracy for %s: %w", busID, err)
		}
		record.Accuracy = &acc
	}
	if raw, ok := values[constants.FieldStoppedAt]; ok && raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt stopped_at for %s: %w", busID, err)
		}
		stoppedAt := models.UnixMilli(ms)
		record.StoppedAt = &stoppedAt
	}
	return record, nil
}

func millisField(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
