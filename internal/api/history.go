package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Testblab/mindmap/internal/model"
)

type listGenerationsResponse struct {
	Items    []model.Generation `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// ListGenerations 查询生成历史（分页，keyword 按企业名过滤）
// GET /api/generations
func (h *Handler) ListGenerations(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))

	page := parseIntWithDefault(c.Query("page"), 1)
	pageSize := parseIntWithDefault(c.Query("pageSize"), 20)
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	items, total, err := h.store.ListGenerations(keyword, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listGenerationsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetGeneration 查询单次生成详情（含导图与来源页明细）
// GET /api/generations/:id
func (h *Handler) GetGeneration(c *gin.Context) {
	id := c.Param("id")

	gen, err := h.store.GetGeneration(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if gen == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "记录不存在"})
		return
	}

	sources, err := h.store.GetGenerationSources(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var tree json.RawMessage
	if gen.TreeJSON != "" {
		tree = json.RawMessage(gen.TreeJSON)
	}

	c.JSON(http.StatusOK, gin.H{
		"generation": gen,
		"tree":       tree,
		"sources":    sources,
	})
}

// DeleteGeneration 删除单条生成记录
// DELETE /api/generations/:id
func (h *Handler) DeleteGeneration(c *gin.Context) {
	id := c.Param("id")

	deleted, err := h.store.DeleteGeneration(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "记录不存在"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已删除"})
}

// DeleteAllGenerations 清空生成历史
// DELETE /api/generations
func (h *Handler) DeleteAllGenerations(c *gin.Context) {
	count, err := h.store.DeleteAllGenerations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": count})
}
