package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Testblab/mindmap/internal/generator"
	"github.com/Testblab/mindmap/internal/logging"
	"github.com/Testblab/mindmap/internal/metrics"
	"github.com/Testblab/mindmap/internal/model"
)

const emptyResultMessage = "未找到任何产品或功能，请检查企业名称与年份是否正确，或调大搜索结果数"

// Generate 生成产品思维导图
// POST /generate, POST /api/generate
// 成功时响应体即 jsMind 导图 JSON，页面直接透传给渲染器
func (h *Handler) Generate(c *gin.Context) {
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

	// 缓存命中直接返回存量导图
	if !req.Refresh {
		if cached := h.freshGeneration(company, year); cached != nil {
			metrics.GenerationTotal.WithLabelValues("cached").Inc()
			c.Header("X-Generation-Id", cached.ID)
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached.TreeJSON))
			return
		}
	}

	result, err := h.engine.Run(c.Request.Context(), h.crawlOptions(company, year))
	if err != nil {
		gen := h.saveGeneration(company, year, nil, err)
		metrics.GenerationTotal.WithLabelValues(model.GenerationStatusError).Inc()
		c.Header("X-Generation-Id", gen.ID)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	gen := h.saveGeneration(company, year, result, nil)
	metrics.GenerationDuration.Observe(result.Duration.Seconds())
	c.Header("X-Generation-Id", gen.ID)

	if result.Empty() {
		metrics.GenerationTotal.WithLabelValues(model.GenerationStatusEmpty).Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": emptyResultMessage})
		return
	}

	metrics.GenerationTotal.WithLabelValues(model.GenerationStatusOK).Inc()
	c.JSON(http.StatusOK, result.Tree)
}

// freshGeneration 查询缓存期内同企业同年份的成功记录，未命中返回 nil
func (h *Handler) freshGeneration(company, year string) *model.Generation {
	ttl := h.cacheTTL()
	if ttl <= 0 {
		return nil
	}

	cached, err := h.store.GetFreshGeneration(company, year, ttl)
	if err != nil {
		logging.Logger.Warnf("查询生成缓存失败: %v", err)
		return nil
	}
	if cached == nil || cached.TreeJSON == "" {
		return nil
	}
	return cached
}

// saveGeneration 落库本次生成（成功、无结果、失败均记录），写入失败不影响响应
func (h *Handler) saveGeneration(company, year string, result *generator.Result, genErr error) *model.Generation {
	gen := &model.Generation{
		ID:        uuid.New().String(),
		Company:   company,
		Year:      year,
		CreatedAt: time.Now(),
	}

	var sources []model.GenerationSource
	switch {
	case genErr != nil:
		gen.Status = model.GenerationStatusError
		gen.ErrorMessage = genErr.Error()
	default:
		gen.ProductCount = result.ProductCount
		gen.FeatureCount = result.FeatureCount
		gen.PageCount = result.PageCount
		gen.DurationMS = result.Duration.Milliseconds()
		sources = result.Sources
		if result.Empty() {
			gen.Status = model.GenerationStatusEmpty
		} else {
			gen.Status = model.GenerationStatusOK
			if data, err := json.Marshal(result.Tree); err == nil {
				gen.TreeJSON = string(data)
			}
		}
	}

	if err := h.store.InsertGeneration(gen, sources); err != nil {
		logging.Logger.Warnf("写入生成历史失败: company=%s, year=%s: %v", company, year, err)
	}
	return gen
}

// crawlOptions 合成本次生成的抓取选项：配置文件默认值叠加运行时覆盖
func (h *Handler) crawlOptions(company, year string) generator.Options {
	crawl := h.cfg.Crawl
	opts := generator.Options{
		Company:               company,
		Year:                  year,
		QueryKeywords:         crawl.QueryKeywords,
		MaxResults:            crawl.MaxResults,
		MaxConcurrent:         crawl.MaxConcurrent,
		MaxProducts:           crawl.MaxProducts,
		MaxFeaturesPerProduct: crawl.MaxFeaturesPerProduct,
	}

	overrides, err := h.store.GetAllConfig()
	if err != nil {
		logging.Logger.Warnf("读取运行时配置失败: %v", err)
		return opts
	}

	applyIntOverride(overrides, "max_results", &opts.MaxResults)
	applyIntOverride(overrides, "max_concurrent", &opts.MaxConcurrent)
	applyIntOverride(overrides, "max_products", &opts.MaxProducts)
	applyIntOverride(overrides, "max_features_per_product", &opts.MaxFeaturesPerProduct)
	if v, ok := overrides["query_keywords"]; ok {
		opts.QueryKeywords = v
	}
	return opts
}

// cacheTTL 生效的缓存时长，0 表示不走缓存
func (h *Handler) cacheTTL() time.Duration {
	hours := h.cfg.Crawl.CacheTTLHours
	if v, err := h.store.GetConfigInt("cache_ttl_hours"); err == nil {
		hours = v
	}
	if hours <= 0 {
		return 0
	}
	return time.Duration(hours) * time.Hour
}
