package model

// MindMap 思维导图（jsMind node_tree 格式），前端直接渲染，不做二次加工
type MindMap struct {
	Meta   MindMapMeta  `json:"meta"`
	Format string       `json:"format"` // 固定为 node_tree
	Data   *MindMapNode `json:"data"`
}

// MindMapMeta 导图元信息
type MindMapMeta struct {
	Name    string `json:"name"`
	Author  string `json:"author"`
	Version string `json:"version"`
}

// MindMapNode 导图节点，ID 全图唯一，Topic 为展示文本
type MindMapNode struct {
	ID              string         `json:"id"`
	Topic           string         `json:"topic"`
	Direction       string         `json:"direction,omitempty"` // left/right，仅一级节点生效
	BackgroundColor string         `json:"background-color,omitempty"`
	ForegroundColor string         `json:"foreground-color,omitempty"`
	Expanded        bool           `json:"expanded"`
	Children        []*MindMapNode `json:"children,omitempty"`
}

// NodeCount 返回整棵树的节点数（含根节点）
func (m *MindMap) NodeCount() int {
	if m == nil || m.Data == nil {
		return 0
	}
	return countNodes(m.Data)
}

// Products 从导图还原产品列表（根的子节点为产品，产品的子节点为功能）
func (m *MindMap) Products() []Product {
	if m == nil || m.Data == nil {
		return nil
	}
	products := make([]Product, 0, len(m.Data.Children))
	for _, p := range m.Data.Children {
		product := Product{Name: p.Topic}
		for _, f := range p.Children {
			product.Features = append(product.Features, f.Topic)
		}
		products = append(products, product)
	}
	return products
}

func countNodes(n *MindMapNode) int {
	total := 1
	for _, c := range n.Children {
		total += countNodes(c)
	}
	return total
}
