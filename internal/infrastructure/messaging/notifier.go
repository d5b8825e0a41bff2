package messaging

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/pkg/metrics"
	"github.com/xiebiao/pharmacy/pkg/mq"
)

// NotifierRoutingKeys notifier订阅的路由键
var NotifierRoutingKeys = []string{"stock.*", "wholesale.#"}

// Notifier 消费库存与批发事件,输出运营提醒
// 低库存、盘点差异用warn级别,方便日志平台按级别告警
type Notifier struct {
	queue string
	log   *logrus.Logger
}

// NewNotifier 创建事件消费者
func NewNotifier(queue string, log *logrus.Logger) *Notifier {
	metrics.InitMetrics()
	return &Notifier{queue: queue, log: log}
}

// Handle 实现mq.Handler
// 负载无法解析时记日志后确认,不重新入队
func (n *Notifier) Handle(_ context.Context, routingKey string, env *mq.Envelope) error {
	entry := n.log.WithFields(logrus.Fields{
		"routing_key": routingKey,
		"event_id":    env.ID,
	})

	if err := n.dispatch(entry, routingKey, env); err != nil {
		entry.WithError(err).Warn("事件负载解析失败,丢弃")
		metrics.IncCounterVec(metrics.MessagesConsumedTotal, map[string]string{"queue": n.queue, "result": "failure"})
		return nil
	}
	metrics.IncCounterVec(metrics.MessagesConsumedTotal, map[string]string{"queue": n.queue, "result": "success"})
	return nil
}

func (n *Notifier) dispatch(entry *logrus.Entry, routingKey string, env *mq.Envelope) error {
	switch routingKey {
	case event.StockLow:
		var e event.Low
		if err := env.Decode(&e); err != nil {
			return err
		}
		entry.WithFields(logrus.Fields{
			"product_id": e.ProductID,
			"remaining":  e.Remaining,
			"threshold":  e.Threshold,
		}).Warn("低库存提醒")

	case event.StockDispensed:
		var e event.Dispensed
		if err := env.Decode(&e); err != nil {
			return err
		}
		entry.WithFields(logrus.Fields{
			"sale_no":    e.SaleNo,
			"product_id": e.ProductID,
			"quantity":   e.Quantity,
			"batches":    len(e.Allocations),
			"remaining":  e.Remaining,
		}).Info("已发药")

	case event.StockAdjusted:
		var e event.Adjusted
		if err := env.Decode(&e); err != nil {
			return err
		}
		fields := logrus.Fields{
			"adjustment_id": e.AdjustmentID,
			"product_id":    e.ProductID,
			"batch_no":      e.BatchNo,
			"type":          e.Type,
			"applied":       e.Applied,
		}
		if e.Reversal {
			entry.WithFields(fields).Info("库存调整已撤销")
			break
		}
		// 减少类调整被截断
		if abs(e.Applied) < e.Requested {
			entry.WithFields(fields).WithField("requested", e.Requested).Warn("库存调整被截断")
			break
		}
		entry.WithFields(fields).Info("库存已调整")

	case event.StockReceived:
		var e event.Received
		if err := env.Decode(&e); err != nil {
			return err
		}
		fields := logrus.Fields{
			"product_id": e.ProductID,
			"batch_no":   e.BatchNo,
			"delta":      e.Delta,
			"quantity":   e.Quantity,
			"source":     e.Source,
		}
		if e.Source == "stock_taking" && e.Delta != 0 {
			entry.WithFields(fields).Warn("盘点差异")
			break
		}
		entry.WithFields(fields).Info("批次已入库")

	case event.WholesaleStatusChanged:
		var e event.StatusChanged
		if err := env.Decode(&e); err != nil {
			return err
		}
		entry.WithFields(logrus.Fields{
			"order_no": e.OrderNo,
			"from":     e.From,
			"to":       e.To,
		}).Info("批发订单状态变更")

	case event.WholesalePaymentRecorded:
		var e event.PaymentRecorded
		if err := env.Decode(&e); err != nil {
			return err
		}
		entry.WithFields(logrus.Fields{
			"order_no": e.OrderNo,
			"amount":   e.Amount.StringFixed(2),
			"balance":  e.Balance.StringFixed(2),
		}).Info("批发订单已收款")

	default:
		entry.Debug("忽略未知事件")
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
