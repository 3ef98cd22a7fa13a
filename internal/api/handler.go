// Package api 提供思维导图生成服务的 HTTP 接口
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Testblab/mindmap/internal/config"
	"github.com/Testblab/mindmap/internal/generator"
	"github.com/Testblab/mindmap/internal/store"
)

// Version 服务版本号，/api/status 返回
const Version = "1.0.0"

// Engine 生成引擎，由 generator.Coordinator 实现
type Engine interface {
	Generate(ctx context.Context, opts generator.Options) <-chan generator.ProgressEvent
	Run(ctx context.Context, opts generator.Options) (*generator.Result, error)
}

// Handler API 处理器
type Handler struct {
	store     *store.Store
	engine    Engine
	cfg       *config.AppConfig
	downloads *downloadStore
}

// NewHandler 创建 API 处理器
func NewHandler(store *store.Store, engine Engine, cfg *config.AppConfig) *Handler {
	return &Handler{
		store:     store,
		engine:    engine,
		cfg:       cfg,
		downloads: newDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 导图生成
	router.POST("/generate", h.Generate)
	router.POST("/generate/stream", h.GenerateStream)

	// 系统状态
	router.GET("/status", h.GetStatus)

	// 配置管理
	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)

	// 生成历史
	router.GET("/generations", h.ListGenerations)
	router.GET("/generations/:id", h.GetGeneration)
	router.DELETE("/generations/:id", h.DeleteGeneration)
	router.DELETE("/generations", h.DeleteAllGenerations)

	// 结果导出
	router.POST("/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)
}
