package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndGauges(t *testing.T) {
	require.NoError(t, InitMetrics(""))
	defer Close()

	Incr("order_processed_total", 1)
	Incr("order_processed_total", 2)
	assert.Equal(t, int64(3), GetCounter("order_processed_total"))

	SetGauge("system_memuse", 512)
	points, err := Query("system_memuse", time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, float64(512), points[0].Value)

	points, err = Query("unknown_metric", time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestQueryWithoutInit(t *testing.T) {
	require.NoError(t, Close())
	_, err := Query("any", time.Now(), time.Now())
	assert.Error(t, err)
	// Writes are dropped silently
	Incr("dropped", 1)
}
