// Package server 组装 HTTP 服务：路由、中间件与内嵌前端
package server

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Testblab/mindmap/internal/api"
	"github.com/Testblab/mindmap/internal/config"
	"github.com/Testblab/mindmap/internal/generator"
	"github.com/Testblab/mindmap/internal/metrics"
	"github.com/Testblab/mindmap/internal/scraper"
	"github.com/Testblab/mindmap/internal/search"
	"github.com/Testblab/mindmap/internal/store"
)

//go:embed all:static
var staticFiles embed.FS

// Server HTTP 服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
}

// NewServer 创建服务器：初始化存储与生成引擎，注册全部路由
func NewServer(cfg *config.AppConfig) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "mindmap.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 组装生成引擎
	searcher := search.NewClient(cfg.Crawl.UserAgent)
	fetcher := scraper.NewFetcher(cfg.Crawl.UserAgent, time.Duration(cfg.Crawl.FetchTimeoutSeconds)*time.Second)
	engine := generator.NewCoordinator(searcher, fetcher, scraper.ExtractProducts)

	handler := api.NewHandler(sqliteStore, engine, cfg)

	s := &Server{
		router: gin.Default(),
		store:  sqliteStore,
		api:    handler,
	}

	s.setupRoutes(devMode)

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	s.router.Use(corsMiddleware())
	s.router.Use(metricsMiddleware())

	// 页面的固定生成入口
	s.router.POST("/generate", s.api.Generate)

	// API 路由
	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	// Prometheus 指标
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 静态页面
	staticDir, _ := fs.Sub(staticFiles, "static")
	pages := []struct {
		route       string
		name        string
		contentType string
	}{
		{"/", "index.html", "text/html; charset=utf-8"},
		{"/app.js", "app.js", "application/javascript; charset=utf-8"},
		{"/style.css", "style.css", "text/css; charset=utf-8"},
		{"/favicon.svg", "favicon.svg", "image/svg+xml"},
	}
	for _, p := range pages {
		s.router.GET(p.route, serveStatic(staticDir, devMode, p.name, p.contentType))
	}
}

// serveStatic 返回静态文件处理器；开发模式直接读磁盘，改完即生效
func serveStatic(staticDir fs.FS, devMode bool, name, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var data []byte
		var err error
		if devMode {
			data, err = os.ReadFile(filepath.Join("internal", "server", "static", name))
		} else {
			data, err = fs.ReadFile(staticDir, name)
		}
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

// corsMiddleware 跨域中间件
func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	})
}

// metricsMiddleware Prometheus 指标采集中间件
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭底层存储
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
