package model

import "time"

// 生成记录状态
const (
	GenerationStatusOK    = "ok"    // 成功生成导图
	GenerationStatusEmpty = "empty" // 抓取完成但未发现任何产品
	GenerationStatusError = "error" // 搜索或抓取失败
)

// 单页抓取状态
const (
	SourceStatusOK      = "ok"
	SourceStatusError   = "error"
	SourceStatusSkipped = "skipped"
)

// GenerateRequest 生成请求（POST /generate 请求体）
type GenerateRequest struct {
	Company string `json:"company"`
	Year    string `json:"year"`
	Refresh bool   `json:"refresh,omitempty"` // true 时跳过缓存强制重新抓取
}

// Generation 一次生成的落库记录
type Generation struct {
	ID           string    `json:"id"`
	Company      string    `json:"company"`
	Year         string    `json:"year"`
	Status       string    `json:"status"` // ok/empty/error
	ErrorMessage string    `json:"errorMessage,omitempty"`
	ProductCount int       `json:"productCount"`
	FeatureCount int       `json:"featureCount"`
	PageCount    int       `json:"pageCount"`
	DurationMS   int64     `json:"durationMs"`
	TreeJSON     string    `json:"-"` // 导图 JSON 原文，列表接口不回传
	CreatedAt    time.Time `json:"createdAt"`
}

// GenerationSource 生成过程中每个来源页的抓取结果
type GenerationSource struct {
	ID           int64  `json:"id"`
	GenerationID string `json:"generationId"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Status       string `json:"status"` // ok/error/skipped
	ProductCount int    `json:"productCount"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
