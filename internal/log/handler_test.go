package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troop127/portal/internal/middleware"
	"github.com/troop127/portal/pkg/model"
)

func TestContextHandler_AddsCorrelationIDAndUser(t *testing.T) {
	var b bytes.Buffer
	logger := slog.New(New(slog.NewJSONHandler(&b, nil)))

	ctx := middleware.NewContextWithCorrelationID(context.Background(), "some-id")
	ctx = model.NewContextWithUser(ctx, &model.User{ID: 42})

	logger.InfoContext(ctx, "info")

	got := make(map[string]any)
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	assert.Equal(t, "some-id", got[middleware.RequestLoggerKeyCorrelationID])
	assert.Equal(t, float64(42), got[middleware.RequestLoggerKeyUser])
}

func TestContextHandler_NoContextValues(t *testing.T) {
	var b bytes.Buffer
	logger := slog.New(New(slog.NewJSONHandler(&b, nil)))

	logger.Info("info")

	got := make(map[string]any)
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	assert.NotContains(t, got, middleware.RequestLoggerKeyCorrelationID)
	assert.NotContains(t, got, middleware.RequestLoggerKeyUser)
}
