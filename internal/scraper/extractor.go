package scraper

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/Testblab/mindmap/internal/model"
)

// 非正文元素，其中的标题和列表不参与提取
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
	"nav":      true,
	"footer":   true,
	"header":   true,
}

// ExtractProducts 按启发式规则从页面提取“产品 → 功能”结构：
// h1/h2/h3 标题视为产品名候选，其后出现的 ul/ol 列表项归为最近一个
// 有效标题的功能。标题为空、包含企业名或超过 10 个词的不算产品，
// 其后的列表同样丢弃；含企业名的列表项按同一规则跳过。
func ExtractProducts(doc *html.Node, company string) *model.ProductCatalog {
	catalog := model.NewProductCatalog()
	companyLower := strings.ToLower(strings.TrimSpace(company))

	var lastHeading string
	var lastHeadingValid bool

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipElements[n.Data] {
				return
			}
			switch n.Data {
			case "h1", "h2", "h3":
				lastHeading = nodeText(n)
				lastHeadingValid = validProductName(lastHeading, companyLower)
				if lastHeadingValid {
					catalog.Add(lastHeading)
				}
				return
			case "ul", "ol":
				if lastHeadingValid {
					for _, item := range listItems(n) {
						if validFeature(item, companyLower) {
							catalog.AddFeature(lastHeading, item)
						}
					}
				}
				// 继续下钻，嵌套列表按同一标题处理
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return catalog
}

// validProductName 产品名候选过滤：非空、不含企业名、不超过 10 个词
func validProductName(title, companyLower string) bool {
	if title == "" {
		return false
	}
	if companyLower != "" && strings.Contains(strings.ToLower(title), companyLower) {
		return false
	}
	if len(strings.Fields(title)) > 10 {
		return false
	}
	return true
}

// validFeature 功能项过滤：非空且不含企业名（与产品名同一规则）
func validFeature(item, companyLower string) bool {
	if item == "" {
		return false
	}
	if companyLower != "" && strings.Contains(strings.ToLower(item), companyLower) {
		return false
	}
	return true
}

// listItems 收集列表下所有 li 的文本（含嵌套项）
func listItems(list *html.Node) []string {
	var items []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			items = append(items, nodeText(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return items
}

// nodeText 节点下全部文本，以空格连接
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
