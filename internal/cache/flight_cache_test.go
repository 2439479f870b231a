package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/flightdesk/booking-backend/internal/config"
)

func TestFlightKey(t *testing.T) {
	assert.Equal(t, "flight:42", FlightKey(42))
}

func TestDecodeFlight(t *testing.T) {
	flight, err := decodeFlight([]byte(`{"id":3,"flight_name":"FD3","seat_capacity":150}`))
	require.NoError(t, err)
	assert.Equal(t, int64(3), flight.ID)
	assert.Equal(t, 150, flight.SeatCapacity)

	_, err = decodeFlight([]byte(`not json`))
	assert.Error(t, err)
}

func TestNewRedisClient_Disabled(t *testing.T) {
	client, err := NewRedisClient(context.Background(), config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.Nil(t, client)
}
