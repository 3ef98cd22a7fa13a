package generator

import (
	"fmt"

	"github.com/Testblab/mindmap/internal/model"
)

// 节点配色：根节点橙、产品蓝、功能绿
const (
	rootColor    = "#E4572E"
	productColor = "#4E79A7"
	featureColor = "#76B041"
)

// BuildTree 由聚合结果构建 jsMind node_tree 导图。
// 节点 ID 规则：根节点 root，产品 p:<序号>，功能 f:<产品序号>:<功能序号>。
func BuildTree(company, year string, products []model.Product) *model.MindMap {
	root := &model.MindMapNode{
		ID:              "root",
		Topic:           company,
		BackgroundColor: rootColor,
		Expanded:        true,
	}

	for i, p := range products {
		// 一级节点左右交替，避免导图偏向一侧
		direction := "right"
		if i%2 == 1 {
			direction = "left"
		}

		productNode := &model.MindMapNode{
			ID:              fmt.Sprintf("p:%d", i),
			Topic:           p.Name,
			Direction:       direction,
			BackgroundColor: productColor,
			Expanded:        true,
		}

		for j, f := range p.Features {
			productNode.Children = append(productNode.Children, &model.MindMapNode{
				ID:              fmt.Sprintf("f:%d:%d", i, j),
				Topic:           f,
				BackgroundColor: featureColor,
				Expanded:        true,
			})
		}

		root.Children = append(root.Children, productNode)
	}

	return &model.MindMap{
		Meta: model.MindMapMeta{
			Name:    fmt.Sprintf("mindmap_%s_%s", company, year),
			Author:  "mindmap",
			Version: "1.0",
		},
		Format: "node_tree",
		Data:   root,
	}
}
