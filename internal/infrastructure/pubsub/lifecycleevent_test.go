package pubsub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-inc/veyra/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEventBus_DispatchDeliversEvent(t *testing.T) {
	bus := NewRedisEventBus(nil, testLogger())

	payload, err := json.Marshal(LifecycleEvent{
		Name:      "user_activated",
		Fields:    map[string]any{"user_id": "user-1", "tenant_key": "acme"},
		Timestamp: 1756000000,
	})
	require.NoError(t, err)

	var got LifecycleEvent
	calls := 0
	bus.dispatch(context.Background(), string(payload), func(ctx context.Context, event LifecycleEvent) {
		calls++
		got = event
	})

	require.Equal(t, 1, calls)
	assert.Equal(t, "user_activated", got.Name)
	assert.Equal(t, "user-1", got.Fields["user_id"])
	assert.Equal(t, "acme", got.Fields["tenant_key"])
	assert.Equal(t, int64(1756000000), got.Timestamp)
}

func TestEventBus_DispatchDropsMalformedPayload(t *testing.T) {
	bus := NewRedisEventBus(nil, testLogger())

	calls := 0
	bus.dispatch(context.Background(), "{not json", func(ctx context.Context, event LifecycleEvent) {
		calls++
	})

	assert.Zero(t, calls)
}
