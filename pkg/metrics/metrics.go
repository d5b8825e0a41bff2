// Package metrics 基于Prometheus的指标收集
//
// 启动时调用一次InitMetrics注册全部指标,/metrics端点由promhttp暴露。
// 标签只使用有限取值的维度(method、status、type),不要把product_id、
// payment_id之类的高基数字段放进标签。
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签:method、path(路由模板)、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 库存业务指标

	// DispensesTotal 发药请求结果
	// 标签:result(success/insufficient/duplicate/error)
	DispensesTotal *prometheus.CounterVec

	// UnitsDispensedTotal 已发出的药品数量
	UnitsDispensedTotal prometheus.Counter

	// DispenseDuration 发药事务耗时(含锁等待)
	DispenseDuration prometheus.Histogram

	// BatchesTouchedPerDispense 单次扣减涉及的批次数
	BatchesTouchedPerDispense prometheus.Histogram

	// StockAdjustmentsTotal 库存调整次数
	// 标签:type(increase/decrease/transfer/donation/reversal)
	StockAdjustmentsTotal *prometheus.CounterVec

	// StockLockFailuresTotal 分布式锁未获取次数(降级为仅数据库行锁)
	StockLockFailuresTotal prometheus.Counter

	// 批发订单指标

	// WholesaleTransitionsTotal 批发订单状态流转
	// 标签:from、to
	WholesaleTransitionsTotal *prometheus.CounterVec

	// WholesalePaymentsTotal 批发收款次数
	WholesalePaymentsTotal prometheus.Counter

	// 熔断器指标

	// CircuitBreakerState 熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签:name、result(success/failure/rejected)
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 事件发布次数
	// 标签:routing_key、result(success/failure/skipped)
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 事件消费次数
	// 标签:queue、result(success/failure)
	MessagesConsumedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有Prometheus指标,重复调用无副作用
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	DispensesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pharmacy_dispenses_total",
			Help: "发药请求总数(按结果)",
		},
		[]string{"result"},
	)

	UnitsDispensedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pharmacy_units_dispensed_total",
			Help: "已发出的药品数量",
		},
	)

	DispenseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "pharmacy_dispense_duration_seconds",
			Help: "发药事务耗时(秒)",
			// 同一药品并发发药时会排队等锁
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	BatchesTouchedPerDispense = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pharmacy_batches_per_dispense",
			Help:    "单次扣减涉及的批次数",
			Buckets: []float64{1, 2, 3, 5, 8},
		},
	)

	StockAdjustmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pharmacy_stock_adjustments_total",
			Help: "库存调整次数",
		},
		[]string{"type"},
	)

	StockLockFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pharmacy_stock_lock_failures_total",
			Help: "未获取到分布式库存锁的次数",
		},
	)

	WholesaleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pharmacy_wholesale_transitions_total",
			Help: "批发订单状态流转次数",
		},
		[]string{"from", "to"},
	)

	WholesalePaymentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pharmacy_wholesale_payments_total",
			Help: "批发订单收款次数",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "事件发布总数",
		},
		[]string{"routing_key", "result"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "事件消费总数",
		},
		[]string{"queue", "result"},
	)
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// AddCounter Counter增加指定值
func AddCounter(counter prometheus.Counter, v float64) {
	counter.Add(v)
}

// IncCounterVec 递增CounterVec(带标签)
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGaugeVec 设置GaugeVec值(带标签)
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值(带标签)
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
