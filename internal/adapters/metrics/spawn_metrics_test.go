package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/application/common"
)

func TestSpawnMetricsCollector_RecordsGauges(t *testing.T) {
	InitRegistry()
	t.Cleanup(func() {
		Registry = nil
		SetGlobalSpawnCollector(nil)
	})

	collector := NewSpawnMetricsCollector()
	require.NoError(t, collector.Register())
	SetGlobalSpawnCollector(collector)

	RecordComposition("W1N1", "target", map[string]int{"harvester": 2, "hauler": 3})
	RecordDeficits("W1N1", map[string]int{"harvester": 2})
	RecordCriticalSignals("W1N1", true, false)
	RecordSchedulingResult("W1N1", "harvester", "accepted")
	RecordSchedulingResult("W1N1", "harvester", "accepted")

	assert.Equal(t, 3.0, testutil.ToFloat64(collector.population.WithLabelValues("W1N1", "target", "hauler")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.deficit.WithLabelValues("W1N1", "harvester")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.criticalSignals.WithLabelValues("W1N1", "zero_harvesters")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.criticalSignals.WithLabelValues("W1N1", "harvesters_below_sources")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.schedulingTotal.WithLabelValues("W1N1", "harvester", "accepted")))
}

func TestRecordFunctions_NoOpWithoutCollector(t *testing.T) {
	SetGlobalSpawnCollector(nil)

	assert.NotPanics(t, func() {
		RecordComposition("W1N1", "current", map[string]int{"builder": 1})
		RecordProductionCost("W1N1", "builder", 300)
	})
	assert.False(t, IsEnabled())
}

type noopRequest struct{}

func TestPrometheusMiddleware_CountsRequests(t *testing.T) {
	collector := NewRequestMetricsCollector()
	mw := PrometheusMiddleware(collector)

	_, err := mw(context.Background(), &noopRequest{}, func(context.Context, common.Request) (common.Response, error) {
		return nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.total.WithLabelValues("noopRequest", "success")))
	assert.Equal(t, "Unknown", requestName(nil))
}

func TestServer_ServesRegistry(t *testing.T) {
	InitRegistry()
	t.Cleanup(func() {
		Registry = nil
		SetGlobalSpawnCollector(nil)
	})
	collector := NewSpawnMetricsCollector()
	require.NoError(t, collector.Register())
	SetGlobalSpawnCollector(collector)
	RecordComposition("W1N1", "target", map[string]int{"harvester": 4})

	server := NewServer("127.0.0.1", 0, "/metrics")
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `colony_spawn_population{kind="target",role="harvester",site="W1N1"} 4`)
}

func TestServer_RequiresRegistry(t *testing.T) {
	Registry = nil

	err := NewServer("127.0.0.1", 0, "/metrics").Start()

	assert.Error(t, err)
}
