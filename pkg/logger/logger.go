// Package logger 基于logrus的结构化日志
//
// 进程内共用一个*logrus.Logger:
//
//	log := logger.New(logger.Options{Level: "info", Format: "json"})
//	logger.SetDefault(log)
//	logger.L().WithField("product_id", id).Info("发药完成")
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options 日志配置(与config.LogConfig字段对应)
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool
}

var (
	mu  sync.RWMutex
	std = logrus.New()
)

// New 按配置创建Logger
// 非法的Level回退为info,文件打不开时回退到stdout
func New(opts Options) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	out, err := openOutput(opts.Output)
	if err != nil {
		l.WithError(err).Warn("日志文件打开失败,改用stdout")
		out = os.Stdout
	}
	l.SetOutput(out)
	l.SetReportCaller(opts.EnableCaller)

	return l
}

func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", output, err)
		}
		return f, nil
	}
}

// SetDefault 替换全局Logger
func SetDefault(l *logrus.Logger) {
	mu.Lock()
	defer mu.Unlock()
	std = l
}

// L 返回全局Logger
func L() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

// LogError 记录带模块/函数上下文的错误日志
func LogError(l *logrus.Logger, module, funcName string, data any, err error) {
	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
	}
	if data != nil {
		fields["data"] = data
	}
	l.WithFields(fields).Error(err.Error())
}
