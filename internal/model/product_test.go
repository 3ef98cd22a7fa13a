package model

import "testing"

func TestProductCatalogOrderAndDedup(t *testing.T) {
	c := NewProductCatalog()
	c.AddFeature("云盘", "同步")
	c.AddFeature("云盘", "分享")
	c.AddFeature("云盘", "同步") // 重复，应忽略
	c.Add("邮箱")
	c.AddFeature("文档", "协作")

	products := c.Products()
	if len(products) != 3 {
		t.Fatalf("产品数 = %d, want 3", len(products))
	}
	wantOrder := []string{"云盘", "邮箱", "文档"}
	for i, p := range products {
		if p.Name != wantOrder[i] {
			t.Fatalf("products[%d] = %q, want %q", i, p.Name, wantOrder[i])
		}
	}
	if got := products[0].Features; len(got) != 2 || got[0] != "同步" || got[1] != "分享" {
		t.Fatalf("云盘功能 = %v, want [同步 分享]", got)
	}
	if len(products[1].Features) != 0 {
		t.Fatalf("邮箱不应有功能: %v", products[1].Features)
	}
	if c.FeatureCount() != 3 {
		t.Fatalf("FeatureCount = %d, want 3", c.FeatureCount())
	}
}

func TestProductCatalogMerge(t *testing.T) {
	a := NewProductCatalog()
	a.AddFeature("云盘", "同步")

	b := NewProductCatalog()
	b.AddFeature("邮箱", "反垃圾")
	b.AddFeature("云盘", "同步") // 与 a 重复
	b.AddFeature("云盘", "备份")

	a.Merge(b)

	products := a.Products()
	if len(products) != 2 {
		t.Fatalf("合并后产品数 = %d, want 2", len(products))
	}
	if products[0].Name != "云盘" || products[1].Name != "邮箱" {
		t.Fatalf("合并后顺序错误: %v, %v", products[0].Name, products[1].Name)
	}
	if got := products[0].Features; len(got) != 2 || got[0] != "同步" || got[1] != "备份" {
		t.Fatalf("合并后云盘功能 = %v, want [同步 备份]", got)
	}

	a.Merge(nil) // 不应 panic
	if a.Len() != 2 {
		t.Fatalf("Merge(nil) 改变了产品数: %d", a.Len())
	}
}

func TestProductCatalogTruncate(t *testing.T) {
	c := NewProductCatalog()
	for _, p := range []string{"甲", "乙", "丙"} {
		for _, f := range []string{"一", "二", "三", "四"} {
			c.AddFeature(p, p+f)
		}
	}

	c.Truncate(2, 3)
	products := c.Products()
	if len(products) != 2 {
		t.Fatalf("截断后产品数 = %d, want 2", len(products))
	}
	for _, p := range products {
		if len(p.Features) != 3 {
			t.Fatalf("产品 %s 截断后功能数 = %d, want 3", p.Name, len(p.Features))
		}
	}

	c.Truncate(0, 0) // 0 表示不限制，不应再截断
	if c.Len() != 2 {
		t.Fatalf("Truncate(0,0) 改变了产品数: %d", c.Len())
	}
}

func TestMindMapNodeCount(t *testing.T) {
	m := &MindMap{
		Format: "node_tree",
		Data: &MindMapNode{
			ID:    "root",
			Topic: "示例",
			Children: []*MindMapNode{
				{ID: "p:0", Topic: "产品A", Children: []*MindMapNode{{ID: "f:0:0", Topic: "功能1"}}},
				{ID: "p:1", Topic: "产品B"},
			},
		},
	}
	if got := m.NodeCount(); got != 4 {
		t.Fatalf("NodeCount = %d, want 4", got)
	}

	var empty *MindMap
	if got := empty.NodeCount(); got != 0 {
		t.Fatalf("nil 导图 NodeCount = %d, want 0", got)
	}
}
