// Package messaging 把领域事件发布到RabbitMQ
// 发布经过熔断器:MQ不可用时快速跳过,业务请求不受影响
package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/pkg/circuitbreaker"
	"github.com/xiebiao/pharmacy/pkg/metrics"
	"github.com/xiebiao/pharmacy/pkg/mq"
)

// EnvelopeSender 由*mq.Publisher实现
type EnvelopeSender interface {
	Publish(ctx context.Context, routingKey string, env *mq.Envelope) error
}

// Options 发布配置
type Options struct {
	Timeout time.Duration // 单次发布超时,默认2s

	// 连续失败FailureThreshold次后熔断,OpenTimeout后半开探测
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Publisher 实现event.Publisher
type Publisher struct {
	sender  EnvelopeSender
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
	log     *logrus.Logger
}

var _ event.Publisher = (*Publisher)(nil)

// NewPublisher 创建带熔断的事件发布者
func NewPublisher(sender EnvelopeSender, opts Options, log *logrus.Logger) *Publisher {
	metrics.InitMetrics()

	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	threshold := opts.FailureThreshold
	breaker := circuitbreaker.New(circuitbreaker.Settings{
		Name:        "rabbitmq",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(c circuitbreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
	})
	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": breaker.Name()}, float64(circuitbreaker.StateClosed))

	return &Publisher{sender: sender, breaker: breaker, timeout: opts.Timeout, log: log}
}

// Publish 包装为Envelope后发布
// 事件在事务提交后发出,请求ctx的取消不应该丢掉事件,这里只继承ctx的值
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	env, err := mq.NewEnvelope(routingKey, payload)
	if err != nil {
		p.count(routingKey, "failure")
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err = p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.sender.Publish(ctx, routingKey, env)
	})

	switch {
	case err == nil:
		p.count(routingKey, "success")
		metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": p.breaker.Name(), "result": "success"})
	case errors.Is(err, circuitbreaker.ErrOpenState):
		p.count(routingKey, "skipped")
		metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": p.breaker.Name(), "result": "rejected"})
	default:
		p.count(routingKey, "failure")
		metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": p.breaker.Name(), "result": "failure"})
	}
	return err
}

// State 熔断器当前状态
func (p *Publisher) State() circuitbreaker.State {
	return p.breaker.State()
}

func (p *Publisher) count(routingKey, result string) {
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{"routing_key": routingKey, "result": result})
}
