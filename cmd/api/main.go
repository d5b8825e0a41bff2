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

	"github.com/sirupsen/logrus"

	_ "github.com/xiebiao/pharmacy/docs"
	"github.com/xiebiao/pharmacy/internal/bootstrap"
	"github.com/xiebiao/pharmacy/internal/infrastructure/config"
	"github.com/xiebiao/pharmacy/internal/interface/http/router"
	"github.com/xiebiao/pharmacy/pkg/logger"
	"github.com/xiebiao/pharmacy/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// @title           Pharmacy API
// @version         1.0
// @description     药房库存、发药与批发订单后台
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Bearer {access_token}
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
		log.WithError(err).Fatal("服务异常退出")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(tracing.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    true,
			SampleRatio: cfg.Tracing.SampleRate,
		})
		if err != nil {
			return fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracer(sctx); err != nil {
				log.WithError(err).Warn("关闭链路追踪失败")
			}
		}()
	}

	infra, cleanup, err := buildInfra(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	created, err := bootstrap.SeedAdmin(ctx, cfg, infra.Staff)
	if err != nil {
		return fmt.Errorf("创建初始管理员失败: %w", err)
	}
	if created {
		log.WithField("email", cfg.Admin.Email).Info("已创建初始管理员")
	}

	handlers, auth := bootstrap.NewHandlers(cfg, infra, bootstrap.NewJWTManager(cfg))
	engine := router.New(bootstrap.RouterOptions(cfg), handlers, auth)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":     srv.Addr,
			"mode":     cfg.Server.Mode,
			"database": cfg.Database.Driver,
			"redis":    cfg.Redis.Enabled,
			"mq":       cfg.MQ.Enabled,
		}).Info("服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("收到退出信号,开始优雅关闭")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	log.Info("服务已停止")
	return nil
}
