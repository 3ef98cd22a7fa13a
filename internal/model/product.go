package model

// Product 产品及其功能列表
type Product struct {
	Name     string   `json:"name"`
	Features []string `json:"features"`
}

// ProductCatalog 产品聚合表：保持首次出现顺序，同一产品的功能去重后按发现顺序保留。
// 非并发安全，各抓取页先各自聚合，再按搜索结果顺序合并。
type ProductCatalog struct {
	order   []string
	entries map[string]*catalogEntry
}

type catalogEntry struct {
	features []string
	seen     map[string]struct{}
}

func NewProductCatalog() *ProductCatalog {
	return &ProductCatalog{entries: make(map[string]*catalogEntry)}
}

// Add 登记一个产品（可先于任何功能出现）
func (c *ProductCatalog) Add(product string) {
	c.entry(product)
}

// AddFeature 为产品追加功能，重复功能忽略
func (c *ProductCatalog) AddFeature(product, feature string) {
	e := c.entry(product)
	if _, ok := e.seen[feature]; ok {
		return
	}
	e.seen[feature] = struct{}{}
	e.features = append(e.features, feature)
}

// Merge 合并另一份聚合表，保持双方的出现顺序
func (c *ProductCatalog) Merge(other *ProductCatalog) {
	if other == nil {
		return
	}
	for _, name := range other.order {
		e := other.entries[name]
		c.Add(name)
		for _, f := range e.features {
			c.AddFeature(name, f)
		}
	}
}

// Truncate 截断到最多 maxProducts 个产品、每个产品最多 maxFeatures 个功能（0 表示不限制）
func (c *ProductCatalog) Truncate(maxProducts, maxFeatures int) {
	if maxProducts > 0 && len(c.order) > maxProducts {
		for _, name := range c.order[maxProducts:] {
			delete(c.entries, name)
		}
		c.order = c.order[:maxProducts]
	}
	if maxFeatures > 0 {
		for _, e := range c.entries {
			if len(e.features) > maxFeatures {
				e.features = e.features[:maxFeatures]
			}
		}
	}
}

// Products 导出为有序切片
func (c *ProductCatalog) Products() []Product {
	out := make([]Product, 0, len(c.order))
	for _, name := range c.order {
		e := c.entries[name]
		features := make([]string, len(e.features))
		copy(features, e.features)
		out = append(out, Product{Name: name, Features: features})
	}
	return out
}

// Len 产品数
func (c *ProductCatalog) Len() int {
	return len(c.order)
}

// FeatureCount 全部产品的功能总数
func (c *ProductCatalog) FeatureCount() int {
	total := 0
	for _, e := range c.entries {
		total += len(e.features)
	}
	return total
}

func (c *ProductCatalog) entry(product string) *catalogEntry {
	if e, ok := c.entries[product]; ok {
		return e
	}
	e := &catalogEntry{seen: make(map[string]struct{})}
	c.entries[product] = e
	c.order = append(c.order, product)
	return e
}
