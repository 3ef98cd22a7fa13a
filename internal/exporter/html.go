package exporter

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/Testblab/mindmap/internal/model"
)

//go:embed template.html
var templateFS embed.FS

var htmlTemplate = template.Must(template.ParseFS(templateFS, "template.html"))

type htmlTemplateData struct {
	Title    string
	TreeJSON template.JS
}

// ExportHTML 导出独立 HTML 文件，离线打开即可查看导图（jsMind 走 CDN）
func ExportHTML(w io.Writer, tree *model.MindMap) error {
	if tree == nil || tree.Data == nil {
		return fmt.Errorf("empty mind map")
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	return htmlTemplate.Execute(w, htmlTemplateData{
		Title:    tree.Meta.Name,
		TreeJSON: template.JS(data),
	})
}

// HTMLFileName 导出文件名，企业名与年份做 URL 编码以保证跨平台可用
func HTMLFileName(company, year string) string {
	return fmt.Sprintf("mindmap_%s_%s.html", url.QueryEscape(company), url.QueryEscape(year))
}
