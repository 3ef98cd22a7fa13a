package logging

import (
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 全局日志实例，Init 之前使用默认输出（stderr）
var Logger = logrus.New()

var once sync.Once

// Options 日志初始化参数
type Options struct {
	Level      string // debug/info/warn/error
	FilePath   string // 日志文件路径，空则仅输出到 stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init 初始化全局日志：写入滚动日志文件，控制台输出交给 gin 与启动横幅
func Init(opts Options) {
	once.Do(func() {
		level, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		Logger.SetLevel(level)
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		Logger.SetReportCaller(true)

		if opts.FilePath != "" {
			Logger.SetOutput(&lumberjack.Logger{
				Filename:   opts.FilePath,
				MaxSize:    opts.MaxSizeMB,
				MaxBackups: opts.MaxBackups,
				MaxAge:     opts.MaxAgeDays,
				Compress:   true,
			})
		}

		Logger.Infof("日志初始化完成, level=%s, file=%s", level, opts.FilePath)
	})
}
