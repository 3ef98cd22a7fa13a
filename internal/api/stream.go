package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Testblab/mindmap/internal/generator"
	"github.com/Testblab/mindmap/internal/metrics"
	"github.com/Testblab/mindmap/internal/model"
)

// GenerateStream 生成产品思维导图（SSE 流式进度）
// POST /api/generate/stream
// 终态 done 事件的 data 携带 generationId 与导图
func (h *Handler) GenerateStream(c *gin.Context) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	company := strings.TrimSpace(req.Company)
	year := strings.TrimSpace(req.Year)
	if company == "" || year == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请填写企业名称和年份"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	send := func(event generator.ProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	// 缓存命中时只发一条 done 事件
	if !req.Refresh {
		if cached := h.freshGeneration(company, year); cached != nil {
			metrics.GenerationTotal.WithLabelValues("cached").Inc()
			send(generator.ProgressEvent{
				Type:    "done",
				Message: "命中缓存，返回已有导图",
				Data: gin.H{
					"generationId": cached.ID,
					"status":       cached.Status,
					"cached":       true,
					"tree":         json.RawMessage(cached.TreeJSON),
					"productCount": cached.ProductCount,
					"featureCount": cached.FeatureCount,
					"pageCount":    cached.PageCount,
				},
				Timestamp: time.Now(),
			})
			return
		}
	}

	progressChan := h.engine.Generate(c.Request.Context(), h.crawlOptions(company, year))

	// 转发进度事件，拦截终态事件以便落库后重发
	var result *generator.Result
	var errMsg string
	for event := range progressChan {
		switch event.Type {
		case "done":
			if r, ok := event.Data.(*generator.Result); ok {
				result = r
				continue
			}
		case "error":
			errMsg = event.Message
		}
		send(event)
	}

	if errMsg != "" {
		h.saveGeneration(company, year, nil, fmt.Errorf("%s", errMsg))
		metrics.GenerationTotal.WithLabelValues(model.GenerationStatusError).Inc()
		return
	}
	if result == nil {
		send(generator.ProgressEvent{
			Type:      "error",
			Message:   "生成未返回结果",
			Timestamp: time.Now(),
		})
		return
	}

	gen := h.saveGeneration(company, year, result, nil)
	metrics.GenerationDuration.Observe(result.Duration.Seconds())
	if result.Empty() {
		metrics.GenerationTotal.WithLabelValues(model.GenerationStatusEmpty).Inc()
		send(generator.ProgressEvent{
			Type:      "error",
			Message:   emptyResultMessage,
			Data:      gin.H{"generationId": gen.ID, "status": gen.Status},
			Timestamp: time.Now(),
		})
		return
	}

	metrics.GenerationTotal.WithLabelValues(model.GenerationStatusOK).Inc()
	send(generator.ProgressEvent{
		Type:    "done",
		Message: fmt.Sprintf("生成完成: %d 个产品, %d 个功能", result.ProductCount, result.FeatureCount),
		Data: gin.H{
			"generationId": gen.ID,
			"status":       gen.Status,
			"tree":         result.Tree,
			"productCount": result.ProductCount,
			"featureCount": result.FeatureCount,
			"pageCount":    result.PageCount,
		},
		Timestamp: time.Now(),
	})
}
