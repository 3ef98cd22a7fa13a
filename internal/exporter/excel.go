// Package exporter 将生成结果导出为 Excel 或独立 HTML 文件
package exporter

import (
	"fmt"
	"net/url"

	"github.com/xuri/excelize/v2"

	"github.com/Testblab/mindmap/internal/model"
)

// ExportExcel 导出产品功能清单工作簿：明细表 + 概要表
func ExportExcel(gen *model.Generation, products []model.Product) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "产品功能"
	f.SetSheetName("Sheet1", sheetName)

	// 设置表头
	headers := []string{"企业名称", "年份", "产品", "功能"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	// 设置表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	f.SetRowStyle(sheetName, 1, 1, headerStyle)

	// 写入数据：每个功能一行，无功能的产品占一行
	row := 2
	for _, p := range products {
		if len(p.Features) == 0 {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), gen.Company)
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), gen.Year)
			f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), p.Name)
			row++
			continue
		}
		for _, feature := range p.Features {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), gen.Company)
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), gen.Year)
			f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), p.Name)
			f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), feature)
			row++
		}
	}

	// 创建概要表
	summarySheet := "概要"
	f.NewSheet(summarySheet)

	summaryData := [][]interface{}{
		{"企业名称", gen.Company},
		{"年份", gen.Year},
		{"产品数", gen.ProductCount},
		{"功能数", gen.FeatureCount},
		{"来源页数", gen.PageCount},
		{"生成耗时(毫秒)", gen.DurationMS},
		{"生成时间", gen.CreatedAt.Format("2006-01-02 15:04:05")},
	}
	for i, r := range summaryData {
		for j, val := range r {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue(summarySheet, cell, val)
		}
	}

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 25)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 30)
	f.SetColWidth(sheetName, "D", "D", 50)
	f.SetColWidth(summarySheet, "A", "A", 20)
	f.SetColWidth(summarySheet, "B", "B", 30)

	f.SetActiveSheet(0)
	return f, nil
}

// ExcelFileName 导出文件名，企业名与年份做 URL 编码以保证跨平台可用
func ExcelFileName(company, year string) string {
	return fmt.Sprintf("mindmap_%s_%s.xlsx", url.QueryEscape(company), url.QueryEscape(year))
}
