package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ConfigResponse 生效的抓取配置
type ConfigResponse struct {
	MaxResults            int    `json:"maxResults"`            // 搜索结果上限
	MaxConcurrent         int    `json:"maxConcurrent"`         // 并发抓取页数
	QueryKeywords         string `json:"queryKeywords"`         // 检索关键词
	CacheTTLHours         int    `json:"cacheTtlHours"`         // 结果缓存时长
	MaxProducts           int    `json:"maxProducts"`           // 导图产品数上限
	MaxFeaturesPerProduct int    `json:"maxFeaturesPerProduct"` // 单产品功能数上限
	FetchTimeoutSeconds   int    `json:"fetchTimeoutSeconds"`   // 单页抓取超时，仅启动时生效
	UserAgent             string `json:"userAgent"`             // 抓取 UA，仅启动时生效
}

// UpdateConfigRequest 更新配置请求
type UpdateConfigRequest struct {
	// 使用 map 允许部分更新，键为 TOML 小写下划线键名
	Updates map[string]interface{} `json:"updates"`
}

// GetConfig 获取生效的抓取配置（配置文件默认值叠加运行时覆盖）
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	crawl := h.cfg.Crawl
	resp := ConfigResponse{
		MaxResults:            crawl.MaxResults,
		MaxConcurrent:         crawl.MaxConcurrent,
		QueryKeywords:         crawl.QueryKeywords,
		CacheTTLHours:         crawl.CacheTTLHours,
		MaxProducts:           crawl.MaxProducts,
		MaxFeaturesPerProduct: crawl.MaxFeaturesPerProduct,
		FetchTimeoutSeconds:   crawl.FetchTimeoutSeconds,
		UserAgent:             crawl.UserAgent,
	}

	overrides, err := h.store.GetAllConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}

	applyIntOverride(overrides, "max_results", &resp.MaxResults)
	applyIntOverride(overrides, "max_concurrent", &resp.MaxConcurrent)
	applyIntOverride(overrides, "cache_ttl_hours", &resp.CacheTTLHours)
	applyIntOverride(overrides, "max_products", &resp.MaxProducts)
	applyIntOverride(overrides, "max_features_per_product", &resp.MaxFeaturesPerProduct)
	if v, ok := overrides["query_keywords"]; ok {
		resp.QueryKeywords = v
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateConfig 更新运行时抓取配置，写入存储的 config 表
// PATCH /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	// 遍历更新项
	for key, value := range req.Updates {
		var strValue string

		switch v := value.(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			strValue = strconv.Itoa(v)
		case bool:
			if v {
				strValue = "1"
			} else {
				strValue = "0"
			}
		default:
			continue // 跳过不支持的类型
		}

		if err := h.store.SetConfig(key, strValue); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "更新配置失败: " + key,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "配置更新成功"})
}

// applyIntOverride 运行时覆盖存在且为合法整数时替换目标值
func applyIntOverride(overrides map[string]string, key string, target *int) {
	v, ok := overrides[key]
	if !ok {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*target = i
}

func parseIntWithDefault(v string, d int) int {
	if v == "" {
		return d
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return i
}
