package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics() // 重复调用不应panic(重复注册)

	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, DispensesTotal)
	assert.NotNil(t, WholesaleTransitionsTotal)
	assert.NotNil(t, MessagesPublishedTotal)
}

func TestDispenseCounters(t *testing.T) {
	InitMetrics()

	before := getCounterVecValue(t, DispensesTotal, map[string]string{"result": "success"})
	IncCounterVec(DispensesTotal, map[string]string{"result": "success"})
	IncCounterVec(DispensesTotal, map[string]string{"result": "success"})
	IncCounterVec(DispensesTotal, map[string]string{"result": "duplicate"})

	assert.Equal(t, before+2, getCounterVecValue(t, DispensesTotal, map[string]string{"result": "success"}))

	units := getCounterValue(t, UnitsDispensedTotal)
	AddCounter(UnitsDispensedTotal, 5)
	assert.Equal(t, units+5, getCounterValue(t, UnitsDispensedTotal))
}

func TestGauge(t *testing.T) {
	InitMetrics()

	start := getGaugeValue(t, HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	DecGauge(HTTPRequestsInProgress)
	assert.Equal(t, start+1, getGaugeValue(t, HTTPRequestsInProgress))
	DecGauge(HTTPRequestsInProgress)
}

func TestGaugeVec(t *testing.T) {
	InitMetrics()

	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "event-publisher"}, 1)
	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "other"}, 2)

	assert.Equal(t, float64(1), getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "event-publisher"}))
	assert.Equal(t, float64(2), getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "other"}))
}

func TestHistogram(t *testing.T) {
	InitMetrics()

	ObserveHistogram(BatchesTouchedPerDispense, 1)
	ObserveHistogram(BatchesTouchedPerDispense, 2)
	ObserveHistogram(BatchesTouchedPerDispense, 3)

	var m dto.Metric
	require.NoError(t, BatchesTouchedPerDispense.Write(&m))
	assert.Equal(t, uint64(3), m.Histogram.GetSampleCount())
	assert.Equal(t, float64(6), m.Histogram.GetSampleSum())
}

func TestHistogramVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"method": "PUT", "path": "/api/medicines-cache/:product_id"}
	ObserveHistogramVec(HTTPRequestDuration, labels, 0.05)
	ObserveHistogramVec(HTTPRequestDuration, labels, 0.1)
	ObserveHistogramVec(HTTPRequestDuration, map[string]string{"method": "GET", "path": "/ping"}, 0.001)

	var m dto.Metric
	h := HTTPRequestDuration.With(labels).(prometheus.Histogram)
	require.NoError(t, h.Write(&m))
	assert.Equal(t, uint64(2), m.Histogram.GetSampleCount())
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	return metric.Counter.GetValue()
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	return getCounterValue(t, counterVec.With(labels))
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	var metric dto.Metric
	require.NoError(t, gauge.Write(&metric))
	return metric.Gauge.GetValue()
}

func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels map[string]string) float64 {
	return getGaugeValue(t, gaugeVec.With(labels))
}
