// Package generator 串联搜索、抓取、聚合与建树，产出思维导图
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/Testblab/mindmap/internal/logging"
	"github.com/Testblab/mindmap/internal/metrics"
	"github.com/Testblab/mindmap/internal/model"
	"github.com/Testblab/mindmap/internal/search"
)

// Searcher 搜索客户端
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]search.Result, error)
}

// PageFetcher 结果页下载器
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*html.Node, error)
}

// Extractor 页面结构提取函数，默认为 scraper.ExtractProducts
type Extractor func(doc *html.Node, company string) *model.ProductCatalog

// Coordinator 生成协调器
type Coordinator struct {
	searcher Searcher
	fetcher  PageFetcher
	extract  Extractor
}

// NewCoordinator 创建生成协调器
func NewCoordinator(searcher Searcher, fetcher PageFetcher, extract Extractor) *Coordinator {
	return &Coordinator{
		searcher: searcher,
		fetcher:  fetcher,
		extract:  extract,
	}
}

// Options 单次生成选项
type Options struct {
	Company               string
	Year                  string
	QueryKeywords         string // 拼在企业名与年份之间的检索词
	MaxResults            int
	MaxConcurrent         int
	MaxProducts           int
	MaxFeaturesPerProduct int
}

// Result 生成结果
type Result struct {
	Tree         *model.MindMap           `json:"tree"`
	ProductCount int                      `json:"productCount"`
	FeatureCount int                      `json:"featureCount"`
	PageCount    int                      `json:"pageCount"`
	Sources      []model.GenerationSource `json:"sources"`
	Duration     time.Duration            `json:"-"`
}

// Empty 是否未发现任何产品
func (r *Result) Empty() bool {
	return r.ProductCount == 0
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/search_done/page_done/page_error/aggregate/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Generate 执行生成，返回进度通道。done 事件的 Data 为 *Result。
func (c *Coordinator) Generate(ctx context.Context, opts Options) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doGenerate(ctx, opts, progressChan)
	}()

	return progressChan
}

// Run 执行生成并等待最终结果，供非流式调用方使用
func (c *Coordinator) Run(ctx context.Context, opts Options) (*Result, error) {
	var result *Result
	var errMsg string

	for event := range c.Generate(ctx, opts) {
		switch event.Type {
		case "done":
			if r, ok := event.Data.(*Result); ok {
				result = r
			}
		case "error":
			errMsg = event.Message
		}
	}

	if errMsg != "" {
		return nil, errors.New(errMsg)
	}
	if result == nil {
		return nil, errors.New("生成未返回结果")
	}
	return result, nil
}

// doGenerate 执行生成逻辑
func (c *Coordinator) doGenerate(ctx context.Context, opts Options, progressChan chan ProgressEvent) {
	startTime := time.Now()

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "start",
		Message: fmt.Sprintf("开始生成 %s（%s）的产品思维导图", opts.Company, opts.Year),
		Data: map[string]string{
			"company": opts.Company,
			"year":    opts.Year,
		},
		Timestamp: time.Now(),
	})

	// 搜索结果页
	query := buildQuery(opts.Company, opts.QueryKeywords, opts.Year)
	results, err := c.searcher.Search(ctx, query, opts.MaxResults)
	if err != nil {
		logging.Logger.Errorf("搜索失败: company=%s, year=%s: %v", opts.Company, opts.Year, err)
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("搜索失败: %v", err),
			Timestamp: time.Now(),
		})
		return
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "search_done",
		Message: fmt.Sprintf("找到 %d 个结果页", len(results)),
		Data: map[string]interface{}{
			"page_count": len(results),
		},
		Timestamp: time.Now(),
	})

	// 并发抓取并逐页提取
	outcomes := c.fetchPages(ctx, opts, results, progressChan)

	if ctx.Err() != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "error",
			Message:   "生成已取消",
			Timestamp: time.Now(),
		})
		return
	}

	// 按搜索结果顺序合并各页聚合表
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "aggregate",
		Message:   "正在聚合产品与功能...",
		Timestamp: time.Now(),
	})

	merged := model.NewProductCatalog()
	sources := make([]model.GenerationSource, 0, len(outcomes))
	for _, o := range outcomes {
		merged.Merge(o.catalog)
		sources = append(sources, o.source)
	}
	merged.Truncate(opts.MaxProducts, opts.MaxFeaturesPerProduct)

	result := &Result{
		ProductCount: merged.Len(),
		FeatureCount: merged.FeatureCount(),
		PageCount:    len(results),
		Sources:      sources,
		Duration:     time.Since(startTime),
	}

	if merged.Len() > 0 {
		result.Tree = BuildTree(opts.Company, opts.Year, merged.Products())
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "done",
		Message:   fmt.Sprintf("生成完成: %d 个产品, %d 个功能", result.ProductCount, result.FeatureCount),
		Data:      result,
		Timestamp: time.Now(),
	})
}

type pageOutcome struct {
	catalog *model.ProductCatalog
	source  model.GenerationSource
}

// fetchPages 并发抓取结果页，返回按搜索顺序排列的各页结果
func (c *Coordinator) fetchPages(ctx context.Context, opts Options, results []search.Result, progressChan chan ProgressEvent) []pageOutcome {
	outcomes := make([]pageOutcome, len(results))

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrent)

	for i, r := range results {
		g.Go(func() error {
			source := model.GenerationSource{
				URL:   r.URL,
				Title: r.Title,
			}

			doc, err := c.fetcher.Fetch(ctx, r.URL)
			if err != nil {
				// 单页失败不影响整体，跳过该页
				source.Status = model.SourceStatusError
				source.ErrorMessage = err.Error()
				outcomes[i] = pageOutcome{source: source}
				metrics.PagesFetchedTotal.WithLabelValues("error").Inc()
				c.sendProgress(progressChan, ProgressEvent{
					Type:    "page_error",
					Message: fmt.Sprintf("抓取失败: %s", r.URL),
					Data: map[string]string{
						"url":   r.URL,
						"error": err.Error(),
					},
					Timestamp: time.Now(),
				})
				return nil
			}

			catalog := c.extract(doc, opts.Company)
			source.Status = model.SourceStatusOK
			source.ProductCount = catalog.Len()
			outcomes[i] = pageOutcome{catalog: catalog, source: source}
			metrics.PagesFetchedTotal.WithLabelValues("ok").Inc()
			c.sendProgress(progressChan, ProgressEvent{
				Type:    "page_done",
				Message: fmt.Sprintf("已分析: %s（%d 个产品候选）", r.URL, catalog.Len()),
				Data: map[string]interface{}{
					"url":           r.URL,
					"product_count": catalog.Len(),
				},
				Timestamp: time.Now(),
			})
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

// buildQuery 拼装检索词：企业名 + 检索关键词 + 年份
func buildQuery(company, keywords, year string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{company, keywords, year} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// sendProgress 发送进度事件，通道满时丢弃
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
	}
}
