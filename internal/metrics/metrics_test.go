package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Observe(OpSet, time.Now(), nil)
	m.Observe(OpSet, time.Now(), nil)
	m.Observe(OpGet, time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues(OpSet, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues(OpGet, "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues(OpGet, "success")))
}

func TestMetrics_ContractsDeployed(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.SetContractsDeployed(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ContractsDeployed))
}
