package database

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v8"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedisClient(models.RedisConfig{
		Host:     mr.Host(),
		Port:     mustAtoi(t, mr.Port()),
		PoolSize: 2,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.NotNil(t, client.GetClient())
	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	port := mustAtoi(t, mr.Port())
	mr.Close()

	client, err := NewRedisClient(models.RedisConfig{Host: "127.0.0.1", Port: port})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestRedisClient_Ping(t *testing.T) {
	tests := []struct {
		name    string
		mockErr error
	}{
		{name: "healthy"},
		{name: "down", mockErr: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			client := &RedisClient{Client: db}

			if tt.mockErr != nil {
				mock.ExpectPing().SetErr(tt.mockErr)
			} else {
				mock.ExpectPing().SetVal("PONG")
			}

			err := client.Ping(context.Background())
			if tt.mockErr != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
