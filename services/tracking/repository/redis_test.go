package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/piresc/trackmybus/internal/pkg/database"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/services/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, tracking.LocationRepo) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, NewRedisLocationRepo(&database.RedisClient{Client: client})
}

func float64Ptr(v float64) *float64 { return &v }

func sampleRecord(busID string) *models.BusLocationRecord {
	now := time.Date(2024, 3, 1, 8, 0, 0, 123000000, time.UTC)
	return &models.BusLocationRecord{
		BusID:             busID,
		Latitude:          25.5941,
		Longitude:         85.1376,
		Accuracy:          float64Ptr(8.5),
		CapturedAt:        now.Add(-2 * time.Second),
		ReceivedAt:        now,
		ReporterSessionID: "S1",
		SharingEnabled:    true,
		Geohash:           "tuzpx6wze",
	}
}

func TestRedisLocationRepo_UpsertAndGet(t *testing.T) {
	mr, repo := setupTestRedis(t)
	ctx := context.Background()

	rec := sampleRecord("B1")
	require.NoError(t, repo.Upsert(ctx, "B1", rec))

	assert.True(t, mr.Exists("bus:location:B1"))
	assert.Equal(t, "1", mr.HGet("bus:location:B1", "sharing"))
	assert.Equal(t, "1709280000123", mr.HGet("bus:location:B1", "received_at"))

	got, err := repo.Get(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestRedisLocationRepo_GetAbsent(t *testing.T) {
	_, repo := setupTestRedis(t)

	got, err := repo.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisLocationRepo_UpsertOverwritesWholeRecord(t *testing.T) {
	_, repo := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "B1", sampleRecord("B1")))

	next := sampleRecord("B1")
	next.Accuracy = nil
	next.Geohash = ""
	next.ReporterSessionID = "S2"
	require.NoError(t, repo.Upsert(ctx, "B1", next))

	got, err := repo.Get(ctx, "B1")
	require.NoError(t, err)
	assert.Nil(t, got.Accuracy)
	assert.Empty(t, got.Geohash)
	assert.Equal(t, "S2", got.ReporterSessionID)
}

func TestRedisLocationRepo_GetMany(t *testing.T) {
	_, repo := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "b1", sampleRecord("b1")))
	require.NoError(t, repo.Upsert(ctx, "b3", sampleRecord("b3")))

	got, err := repo.GetMany(ctx, []string{"b2", "b1", "b3", "b1"})
	require.NoError(t, err)

	assert.Len(t, got, 3)
	assert.Nil(t, got["b2"])
	assert.Equal(t, "b1", got["b1"].BusID)
	assert.Equal(t, "b3", got["b3"].BusID)

	empty, err := repo.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisLocationRepo_StopSharing(t *testing.T) {
	mr, repo := setupTestRedis(t)
	ctx := context.Background()
	stoppedAt := time.Date(2024, 3, 1, 8, 0, 10, 0, time.UTC)

	found, err := repo.StopSharing(ctx, "B9", stoppedAt)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists("bus:location:B9"))

	rec := sampleRecord("B1")
	require.NoError(t, repo.Upsert(ctx, "B1", rec))

	found, err = repo.StopSharing(ctx, "B1", stoppedAt)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1709280010000", mr.HGet("bus:location:B1", "stopped_at"))

	got, err := repo.Get(ctx, "B1")
	require.NoError(t, err)
	assert.False(t, got.SharingEnabled)
	require.NotNil(t, got.StoppedAt)
	assert.Equal(t, stoppedAt, *got.StoppedAt)
	assert.Equal(t, rec.Latitude, got.Latitude)
	assert.Equal(t, rec.ReceivedAt, got.ReceivedAt)

	// the next accepted fix replaces the whole hash, stop time included
	require.NoError(t, repo.Upsert(ctx, "B1", sampleRecord("B1")))
	got, err = repo.Get(ctx, "B1")
	require.NoError(t, err)
	assert.True(t, got.SharingEnabled)
	assert.Nil(t, got.StoppedAt)
}

func TestRedisLocationRepo_CorruptRecordIsAbsent(t *testing.T) {
	mr, repo := setupTestRedis(t)
	ctx := context.Background()
	mr.HSet("bus:location:B1", "lat", "north", "lng", "85.1", "captured_at", "1", "received_at", "1")
	require.NoError(t, repo.Upsert(ctx, "B2", sampleRecord("B2")))

	got, err := repo.Get(ctx, "B1")
	require.NoError(t, err)
	assert.Nil(t, got)

	many, err := repo.GetMany(ctx, []string{"B1", "B2"})
	require.NoError(t, err)
	assert.Nil(t, many["B1"])
	require.NotNil(t, many["B2"])
	assert.Equal(t, "B2", many["B2"].BusID)

	require.NoError(t, repo.Upsert(ctx, "B1", sampleRecord("B1")))
	got, err = repo.Get(ctx, "B1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 25.5941, got.Latitude)
}

func TestRedisLocationRepo_StoreUnavailable(t *testing.T) {
	mr, repo := setupTestRedis(t)
	mr.Close()
	ctx := context.Background()

	err := repo.Upsert(ctx, "B1", sampleRecord("B1"))
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	_, err = repo.Get(ctx, "B1")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	_, err = repo.GetMany(ctx, []string{"B1"})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	_, err = repo.StopSharing(ctx, "B1", time.Now())
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}
