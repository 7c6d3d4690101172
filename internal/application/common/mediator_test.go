package common_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/application/common"
)

type pingRequest struct{ value int }

type pingHandler struct{}

func (pingHandler) Handle(_ context.Context, request common.Request) (common.Response, error) {
	req := request.(*pingRequest)
	if req.value < 0 {
		return nil, errors.New("negative")
	}
	return req.value * 2, nil
}

type recordingLogger struct {
	entries []string
}

func (l *recordingLogger) Log(level, message string, _ map[string]interface{}) {
	l.entries = append(l.entries, level+" "+message)
}

func TestMediator_SendDispatchesThroughMiddleware(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingRequest](m, pingHandler{}))

	var order []string
	m.Use(func(ctx context.Context, r common.Request, next common.HandlerFunc) (common.Response, error) {
		order = append(order, "outer")
		return next(ctx, r)
	})
	m.Use(func(ctx context.Context, r common.Request, next common.HandlerFunc) (common.Response, error) {
		order = append(order, "inner")
		return next(ctx, r)
	})

	resp, err := m.Send(context.Background(), &pingRequest{value: 21})

	require.NoError(t, err)
	assert.Equal(t, 42, resp)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestMediator_RejectsDuplicateAndUnknown(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingRequest](m, pingHandler{}))

	assert.Error(t, common.RegisterHandler[*pingRequest](m, pingHandler{}))

	_, err := m.Send(context.Background(), struct{}{})
	assert.Error(t, err)
	_, err = m.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestTimingMiddleware_LogsAtDebug(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingRequest](m, pingHandler{}))

	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.Use(common.TimingMiddleware(func() time.Time {
		tick = tick.Add(5 * time.Millisecond)
		return tick
	}))

	logger := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)

	_, err := m.Send(ctx, &pingRequest{value: -1})

	assert.Error(t, err)
	assert.Equal(t, []string{"DEBUG request handled"}, logger.entries)
}

func TestLoggerFromContext_FallsBackToNoOp(t *testing.T) {
	logger := common.LoggerFromContext(context.Background())

	assert.NotPanics(t, func() { logger.Log(common.LevelInfo, "ignored", nil) })
	assert.Less(t, common.LevelRank(common.LevelDebug), common.LevelRank(common.LevelWarning))
}
