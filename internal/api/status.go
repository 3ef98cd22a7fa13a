package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Testblab/mindmap/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	GenerationCount int               `json:"generationCount"` // 历史生成次数
	LastGeneration  *model.Generation `json:"lastGeneration,omitempty"`
	Version         string            `json:"version"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	count, err := h.store.CountGenerations()
	if err != nil {
		count = 0
	}

	last, err := h.store.LatestGeneration()
	if err != nil {
		last = nil
	}

	c.JSON(http.StatusOK, StatusResponse{
		GenerationCount: count,
		LastGeneration:  last,
		Version:         Version,
	})
}
