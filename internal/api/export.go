package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Testblab/mindmap/internal/exporter"
	"github.com/Testblab/mindmap/internal/model"
)

const downloadTTL = 10 * time.Minute

// ExportRequest 导出请求
type ExportRequest struct {
	GenerationID string `json:"generationId"`
	Format       string `json:"format"` // xlsx / html
}

// Export 将历史生成结果导出为文件，返回一次性下载地址
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}
	if req.GenerationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 generationId"})
		return
	}
	if req.Format != "xlsx" && req.Format != "html" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的导出格式: " + req.Format})
		return
	}

	gen, err := h.store.GetGeneration(req.GenerationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if gen == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "记录不存在"})
		return
	}
	if gen.TreeJSON == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "该记录没有可导出的导图"})
		return
	}

	var tree model.MindMap
	if err := json.Unmarshal([]byte(gen.TreeJSON), &tree); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导图数据损坏"})
		return
	}

	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("mindmap_export_%d_%d.%s", time.Now().UnixNano(), os.Getpid(), req.Format))

	var item downloadItem
	switch req.Format {
	case "xlsx":
		f, err := exporter.ExportExcel(gen, tree.Products())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
			return
		}
		defer f.Close()
		if err := f.SaveAs(tempPath); err != nil {
			_ = os.Remove(tempPath)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "写入导出文件失败: " + err.Error()})
			return
		}
		item = downloadItem{
			filePath:    tempPath,
			fileName:    exporter.ExcelFileName(gen.Company, gen.Year),
			displayName: fmt.Sprintf("mindmap_%s_%s.xlsx", gen.Company, gen.Year),
			contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		}
	case "html":
		out, err := os.Create(tempPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "写入导出文件失败: " + err.Error()})
			return
		}
		if err := exporter.ExportHTML(out, &tree); err != nil {
			_ = out.Close()
			_ = os.Remove(tempPath)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
			return
		}
		if err := out.Close(); err != nil {
			_ = os.Remove(tempPath)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "写入导出文件失败: " + err.Error()})
			return
		}
		item = downloadItem{
			filePath:    tempPath,
			fileName:    exporter.HTMLFileName(gen.Company, gen.Year),
			displayName: fmt.Sprintf("mindmap_%s_%s.html", gen.Company, gen.Year),
			contentType: "text/html; charset=utf-8",
		}
	}

	token := h.downloads.put(item, downloadTTL)

	c.JSON(http.StatusOK, gin.H{
		"downloadUrl": "/api/export/download/" + token,
		"fileName":    item.fileName,
	})
}

// DownloadExport 下载导出文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "导出文件不存在"})
		return
	}

	c.Header("Content-Disposition", buildDownloadContentDisposition(item.fileName, item.displayName))
	c.Header("Content-Type", item.contentType)
	c.File(item.filePath)

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
}

// buildDownloadContentDisposition ASCII 回退名 + RFC 5987 UTF-8 文件名
func buildDownloadContentDisposition(asciiName, displayName string) string {
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", asciiName, url.PathEscape(displayName))
}
