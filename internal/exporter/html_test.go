package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Testblab/mindmap/internal/model"
)

func TestExportHTMLRendersTree(t *testing.T) {
	tree := &model.MindMap{
		Meta:   model.MindMapMeta{Name: "mindmap_测试云科技_2024", Author: "mindmap", Version: "1.0"},
		Format: "node_tree",
		Data: &model.MindMapNode{
			ID:       "root",
			Topic:    "测试云科技",
			Expanded: true,
			Children: []*model.MindMapNode{
				{ID: "p:0", Topic: "云盘", Direction: "right", Expanded: true},
			},
		},
	}

	var buf bytes.Buffer
	if err := ExportHTML(&buf, tree); err != nil {
		t.Fatalf("ExportHTML failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<title>mindmap_测试云科技_2024</title>") {
		t.Fatalf("缺少标题: %s", out)
	}
	if !strings.Contains(out, `"format":"node_tree"`) {
		t.Fatalf("缺少 node_tree 数据: %s", out)
	}
	if !strings.Contains(out, `"topic":"云盘"`) {
		t.Fatalf("缺少产品节点: %s", out)
	}
	if !strings.Contains(out, "jsmind_container") {
		t.Fatalf("缺少容器元素: %s", out)
	}
	if !strings.Contains(out, "jm.show(mind)") {
		t.Fatalf("缺少渲染调用: %s", out)
	}
}

func TestExportHTMLEmptyTree(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportHTML(&buf, nil); err == nil {
		t.Fatal("空导图应当返回错误")
	}
	if err := ExportHTML(&buf, &model.MindMap{Format: "node_tree"}); err == nil {
		t.Fatal("无根节点应当返回错误")
	}
}

func TestHTMLFileName(t *testing.T) {
	got := HTMLFileName("测试 公司", "2024")
	want := "mindmap_%E6%B5%8B%E8%AF%95+%E5%85%AC%E5%8F%B8_2024.html"
	if got != want {
		t.Fatalf("HTMLFileName=%q, want %q", got, want)
	}
}
