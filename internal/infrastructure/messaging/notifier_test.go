package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/pkg/mq"
)

func handle(t *testing.T, routingKey string, payload any) *test.Hook {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	n := NewNotifier("pharmacy.notifier", log)

	env, err := mq.NewEnvelope(routingKey, payload)
	require.NoError(t, err)
	require.NoError(t, n.Handle(context.Background(), routingKey, env))
	return hook
}

func TestNotifierLowStockWarns(t *testing.T) {
	hook := handle(t, event.StockLow, event.Low{ProductID: "P1", Remaining: 3, Threshold: 10})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "P1", entry.Data["product_id"])
	assert.Equal(t, 3, entry.Data["remaining"])
}

func TestNotifierAdjustments(t *testing.T) {
	t.Run("截断的减少调整", func(t *testing.T) {
		hook := handle(t, event.StockAdjusted, event.Adjusted{
			AdjustmentID: 1, ProductID: "P1", BatchNo: "B1", Type: "decrease", Requested: 5, Applied: -2,
		})
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, 5, hook.LastEntry().Data["requested"])
	})

	t.Run("完整生效", func(t *testing.T) {
		hook := handle(t, event.StockAdjusted, event.Adjusted{
			AdjustmentID: 2, ProductID: "P1", BatchNo: "B1", Type: "increase", Requested: 5, Applied: 5,
		})
		assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	})

	t.Run("撤销", func(t *testing.T) {
		hook := handle(t, event.StockAdjusted, event.Adjusted{
			AdjustmentID: 3, ProductID: "P1", BatchNo: "B1", Type: "decrease", Requested: 5, Applied: 2, Reversal: true,
		})
		assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
		assert.Equal(t, "库存调整已撤销", hook.LastEntry().Message)
	})
}

func TestNotifierStockTakingDifference(t *testing.T) {
	hook := handle(t, event.StockReceived, event.Received{
		ProductID: "P1", BatchNo: "B1", Delta: -4, Quantity: 6, Source: "stock_taking",
	})
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	hook = handle(t, event.StockReceived, event.Received{
		ProductID: "P1", BatchNo: "B2", Delta: 50, Quantity: 50, Source: "receipt",
	})
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestNotifierAcksMalformedPayload(t *testing.T) {
	log, hook := test.NewNullLogger()
	n := NewNotifier("pharmacy.notifier", log)

	env := &mq.Envelope{ID: "e1", Type: event.StockLow, Payload: json.RawMessage(`"not an object"`)}
	// 返回nil,消息被确认而不是重新入队
	assert.NoError(t, n.Handle(context.Background(), event.StockLow, env))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestNotifierIgnoresUnknownEvents(t *testing.T) {
	hook := handle(t, "stock.something_new", map[string]string{"k": "v"})
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}
