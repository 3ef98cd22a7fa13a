package scraper

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestExtractProductsBasic(t *testing.T) {
	doc := parsePage(t, `
<html><body>
  <h1>示例公司 2024 年度回顾</h1>
  <h2>云盘</h2>
  <ul><li>自动同步</li><li>文件分享</li><li></li></ul>
  <h3>智能邮箱</h3>
  <ol><li>反垃圾</li><li>日程识别</li></ol>
</body></html>`)

	catalog := ExtractProducts(doc, "示例公司")
	products := catalog.Products()

	// 含企业名的 h1 被过滤，其余两个标题按文档顺序成为产品
	if len(products) != 2 {
		t.Fatalf("产品数 = %d, want 2: %+v", len(products), products)
	}
	if products[0].Name != "云盘" || products[1].Name != "智能邮箱" {
		t.Fatalf("产品顺序错误: %q, %q", products[0].Name, products[1].Name)
	}
	if got := products[0].Features; len(got) != 2 || got[0] != "自动同步" || got[1] != "文件分享" {
		t.Fatalf("云盘功能 = %v", got)
	}
	if got := products[1].Features; len(got) != 2 || got[0] != "反垃圾" {
		t.Fatalf("智能邮箱功能 = %v", got)
	}
}

func TestExtractProductsFilters(t *testing.T) {
	doc := parsePage(t, `
<html><body>
  <h2>one two three four five six seven eight nine ten eleven</h2>
  <ul><li>超长标题后的列表应被丢弃</li></ul>
  <h2></h2>
  <ul><li>空标题后的列表应被丢弃</li></ul>
  <h2>acme 全家桶</h2>
  <ul><li>含企业名标题后的列表应被丢弃</li></ul>
  <h2>正常产品</h2>
  <ul><li>功能一</li></ul>
</body></html>`)

	catalog := ExtractProducts(doc, "ACME")
	products := catalog.Products()
	if len(products) != 1 {
		t.Fatalf("产品数 = %d, want 1: %+v", len(products), products)
	}
	if products[0].Name != "正常产品" || len(products[0].Features) != 1 {
		t.Fatalf("保留的产品错误: %+v", products[0])
	}
}

func TestExtractProductsFeatureCompanyFilter(t *testing.T) {
	doc := parsePage(t, `
<html><body>
  <h2>云盘</h2>
  <ul><li>自动同步</li><li>ACME 专属加速</li><li>acme</li></ul>
</body></html>`)

	catalog := ExtractProducts(doc, "ACME")
	products := catalog.Products()
	if len(products) != 1 {
		t.Fatalf("产品数 = %d", len(products))
	}
	// 含企业名的功能项与产品名走同一过滤规则
	if got := products[0].Features; len(got) != 1 || got[0] != "自动同步" {
		t.Fatalf("功能 = %v, want [自动同步]", got)
	}
}

func TestExtractProductsListBeforeHeading(t *testing.T) {
	doc := parsePage(t, `
<html><body>
  <ul><li>没有标题的列表</li></ul>
  <h2>产品A</h2>
</body></html>`)

	catalog := ExtractProducts(doc, "示例")
	products := catalog.Products()
	if len(products) != 1 || products[0].Name != "产品A" {
		t.Fatalf("products = %+v", products)
	}
	if len(products[0].Features) != 0 {
		t.Fatalf("标题前的列表不应被关联: %v", products[0].Features)
	}
}

func TestExtractProductsSkipsChrome(t *testing.T) {
	doc := parsePage(t, `
<html><body>
  <nav><h2>导航栏</h2><ul><li>首页</li><li>关于</li></ul></nav>
  <header><h2>页头标题</h2></header>
  <h2>真实产品</h2>
  <ul><li>真实功能</li></ul>
  <footer><h2>页脚</h2><ul><li>版权信息</li></ul></footer>
  <script>var x = "<h2>脚本里的假标题</h2>";</script>
</body></html>`)

	catalog := ExtractProducts(doc, "示例")
	products := catalog.Products()
	if len(products) != 1 || products[0].Name != "真实产品" {
		t.Fatalf("导航/页头/页脚内容未被跳过: %+v", products)
	}
}

func TestExtractProductsNestedList(t *testing.T) {
	doc := parsePage(t, `
<html><body>
  <h2>套件</h2>
  <ul>
    <li>基础版</li>
    <li>高级版
      <ul><li>单点登录</li></ul>
    </li>
  </ul>
</body></html>`)

	catalog := ExtractProducts(doc, "示例")
	products := catalog.Products()
	if len(products) != 1 {
		t.Fatalf("产品数 = %d", len(products))
	}
	features := products[0].Features
	// 嵌套列表项独立收集，父项文本包含子项文本
	if len(features) != 3 {
		t.Fatalf("功能 = %v, want 3 项", features)
	}
	if features[0] != "基础版" {
		t.Fatalf("features[0] = %q", features[0])
	}
	if !strings.Contains(features[1], "高级版") {
		t.Fatalf("features[1] = %q", features[1])
	}
	if features[2] != "单点登录" {
		t.Fatalf("features[2] = %q", features[2])
	}
}

func TestExtractProductsDedup(t *testing.T) {
	doc := parsePage(t, `
<html><body>
  <h2>云盘</h2>
  <ul><li>同步</li><li>同步</li></ul>
  <h2>云盘</h2>
  <ul><li>同步</li><li>备份</li></ul>
</body></html>`)

	catalog := ExtractProducts(doc, "示例")
	products := catalog.Products()
	if len(products) != 1 {
		t.Fatalf("重名产品应合并: %+v", products)
	}
	if got := products[0].Features; len(got) != 2 || got[0] != "同步" || got[1] != "备份" {
		t.Fatalf("功能去重失败: %v", got)
	}
}

func TestValidProductName(t *testing.T) {
	cases := []struct {
		title   string
		company string
		want    bool
	}{
		{"云盘", "示例公司", true},
		{"", "示例公司", false},
		{"示例公司云盘", "示例公司", false},
		{"ACME Cloud", "acme", false}, // 大小写不敏感
		{"a b c d e f g h i j k", "示例", false},
		{"a b c d e f g h i j", "示例", true}, // 恰好 10 个词
	}
	for _, tc := range cases {
		if got := validProductName(tc.title, strings.ToLower(tc.company)); got != tc.want {
			t.Fatalf("validProductName(%q, %q) = %v, want %v", tc.title, tc.company, got, tc.want)
		}
	}
}

func parsePage(t *testing.T, content string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("解析测试页面失败: %v", err)
	}
	return doc
}
