// notifier 消费库存与批发事件并输出运营提醒
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/pharmacy/internal/infrastructure/config"
	"github.com/xiebiao/pharmacy/internal/infrastructure/messaging"
	"github.com/xiebiao/pharmacy/pkg/logger"
	"github.com/xiebiao/pharmacy/pkg/mq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	logger.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("notifier异常退出")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	if cfg.MQ.URL == "" {
		return errors.New("未配置mq.url")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, "topic", cfg.MQ.Queue, messaging.NotifierRoutingKeys, log)
	if err != nil {
		return err
	}
	defer consumer.Close()

	notifier := messaging.NewNotifier(consumer.Queue(), log)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.MQ.NotifierMetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics服务异常")
		}
	}()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(sctx)
	}()

	log.WithFields(logrus.Fields{
		"queue":        consumer.Queue(),
		"routing_keys": messaging.NotifierRoutingKeys,
		"metrics":      cfg.MQ.NotifierMetricsAddr,
	}).Info("notifier启动")
	return consumer.Consume(ctx, notifier.Handle)
}
