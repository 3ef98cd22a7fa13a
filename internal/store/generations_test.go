package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Testblab/mindmap/internal/model"
)

func TestInsertAndGetGeneration(t *testing.T) {
	st := newTestStore(t)

	gen := &model.Generation{
		ID:           "gen-1",
		Company:      "示例公司",
		Year:         "2024",
		Status:       model.GenerationStatusOK,
		ProductCount: 2,
		FeatureCount: 5,
		PageCount:    3,
		DurationMS:   1234,
		TreeJSON:     `{"format":"node_tree"}`,
		CreatedAt:    time.Now(),
	}
	sources := []model.GenerationSource{
		{URL: "https://a.example.com", Title: "页面A", Status: model.SourceStatusOK, ProductCount: 2},
		{URL: "https://b.example.com", Title: "页面B", Status: model.SourceStatusError, ErrorMessage: "HTTP 404"},
	}

	if err := st.InsertGeneration(gen, sources); err != nil {
		t.Fatalf("InsertGeneration: %v", err)
	}

	got, err := st.GetGeneration("gen-1")
	if err != nil {
		t.Fatalf("GetGeneration: %v", err)
	}
	if got == nil {
		t.Fatal("记录不存在")
	}
	if got.Company != "示例公司" || got.Year != "2024" || got.Status != model.GenerationStatusOK {
		t.Fatalf("记录 = %+v", got)
	}
	if got.TreeJSON != `{"format":"node_tree"}` {
		t.Fatalf("TreeJSON = %q", got.TreeJSON)
	}

	gotSources, err := st.GetGenerationSources("gen-1")
	if err != nil {
		t.Fatalf("GetGenerationSources: %v", err)
	}
	if len(gotSources) != 2 {
		t.Fatalf("来源数 = %d", len(gotSources))
	}
	if gotSources[0].URL != "https://a.example.com" || gotSources[1].ErrorMessage != "HTTP 404" {
		t.Fatalf("来源 = %+v", gotSources)
	}

	// 不存在的 ID 返回 nil 而非错误
	missing, err := st.GetGeneration("no-such-id")
	if err != nil || missing != nil {
		t.Fatalf("missing = %+v, err = %v", missing, err)
	}
}

func TestGetFreshGeneration(t *testing.T) {
	st := newTestStore(t)

	now := time.Now()
	insertGen(t, st, &model.Generation{
		ID: "old", Company: "示例", Year: "2024",
		Status: model.GenerationStatusOK, TreeJSON: "old-tree",
		CreatedAt: now.Add(-48 * time.Hour),
	})

	// 超过缓存期的记录不命中
	got, err := st.GetFreshGeneration("示例", "2024", 24*time.Hour)
	if err != nil {
		t.Fatalf("GetFreshGeneration: %v", err)
	}
	if got != nil {
		t.Fatalf("过期记录不应命中: %+v", got)
	}

	insertGen(t, st, &model.Generation{
		ID: "fresh", Company: "示例", Year: "2024",
		Status: model.GenerationStatusOK, TreeJSON: "fresh-tree",
		CreatedAt: now.Add(-time.Hour),
	})
	// 空结果与失败记录不参与缓存
	insertGen(t, st, &model.Generation{
		ID: "empty", Company: "示例", Year: "2024",
		Status: model.GenerationStatusEmpty,
		CreatedAt: now,
	})

	got, err = st.GetFreshGeneration("示例", "2024", 24*time.Hour)
	if err != nil {
		t.Fatalf("GetFreshGeneration: %v", err)
	}
	if got == nil || got.ID != "fresh" {
		t.Fatalf("命中 = %+v, want fresh", got)
	}

	// 其他年份不命中
	got, err = st.GetFreshGeneration("示例", "2023", 24*time.Hour)
	if err != nil || got != nil {
		t.Fatalf("其他年份命中 = %+v, err = %v", got, err)
	}
}

func TestListGenerations(t *testing.T) {
	st := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i, company := range []string{"阿尔法", "贝塔", "阿尔法", "伽马", "阿尔法"} {
		insertGen(t, st, &model.Generation{
			ID: string(rune('a' + i)), Company: company, Year: "2024",
			Status:    model.GenerationStatusOK,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	// 全量分页
	list, total, err := st.ListGenerations("", 1, 2)
	if err != nil {
		t.Fatalf("ListGenerations: %v", err)
	}
	if total != 5 || len(list) != 2 {
		t.Fatalf("total = %d, page = %d", total, len(list))
	}
	// 时间倒序：最新的在前
	if list[0].ID != "e" || list[1].ID != "d" {
		t.Fatalf("排序 = %s, %s", list[0].ID, list[1].ID)
	}

	// 第三页只剩一条
	list, _, err = st.ListGenerations("", 3, 2)
	if err != nil || len(list) != 1 {
		t.Fatalf("第三页 = %d 条, err = %v", len(list), err)
	}

	// 关键字过滤
	list, total, err = st.ListGenerations("阿尔法", 1, 10)
	if err != nil {
		t.Fatalf("ListGenerations: %v", err)
	}
	if total != 3 || len(list) != 3 {
		t.Fatalf("过滤后 total = %d, page = %d", total, len(list))
	}
	for _, g := range list {
		if g.Company != "阿尔法" {
			t.Fatalf("过滤失效: %+v", g)
		}
	}
}

func TestDeleteGeneration(t *testing.T) {
	st := newTestStore(t)

	gen := &model.Generation{
		ID: "gen-1", Company: "示例", Year: "2024",
		Status: model.GenerationStatusOK, CreatedAt: time.Now(),
	}
	if err := st.InsertGeneration(gen, []model.GenerationSource{
		{URL: "https://a.example.com", Status: model.SourceStatusOK},
	}); err != nil {
		t.Fatalf("InsertGeneration: %v", err)
	}

	ok, err := st.DeleteGeneration("gen-1")
	if err != nil {
		t.Fatalf("DeleteGeneration: %v", err)
	}
	if !ok {
		t.Fatal("删除已存在记录应返回 true")
	}

	if got, _ := st.GetGeneration("gen-1"); got != nil {
		t.Fatalf("删除后仍可查到: %+v", got)
	}
	if sources, _ := st.GetGenerationSources("gen-1"); len(sources) != 0 {
		t.Fatalf("来源未级联删除: %+v", sources)
	}

	ok, err = st.DeleteGeneration("gen-1")
	if err != nil || ok {
		t.Fatalf("重复删除 = %v, err = %v", ok, err)
	}
}

func TestDeleteAllAndCount(t *testing.T) {
	st := newTestStore(t)

	for i := 0; i < 3; i++ {
		insertGen(t, st, &model.Generation{
			ID: string(rune('a' + i)), Company: "示例", Year: "2024",
			Status: model.GenerationStatusOK, CreatedAt: time.Now(),
		})
	}

	count, err := st.CountGenerations()
	if err != nil || count != 3 {
		t.Fatalf("count = %d, err = %v", count, err)
	}

	latest, err := st.LatestGeneration()
	if err != nil || latest == nil {
		t.Fatalf("latest = %+v, err = %v", latest, err)
	}

	deleted, err := st.DeleteAllGenerations()
	if err != nil || deleted != 3 {
		t.Fatalf("deleted = %d, err = %v", deleted, err)
	}

	count, _ = st.CountGenerations()
	if count != 0 {
		t.Fatalf("清空后 count = %d", count)
	}
	latest, err = st.LatestGeneration()
	if err != nil || latest != nil {
		t.Fatalf("清空后 latest = %+v, err = %v", latest, err)
	}
}

func TestConfigOverrides(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.GetConfig("max_results"); err == nil {
		t.Fatal("不存在的配置项应报错")
	}

	if err := st.SetConfigInt("max_results", 20); err != nil {
		t.Fatalf("SetConfigInt: %v", err)
	}
	if got, err := st.GetConfigInt("max_results"); err != nil || got != 20 {
		t.Fatalf("GetConfigInt = %d, err = %v", got, err)
	}

	// 覆盖更新
	if err := st.SetConfigInt("max_results", 5); err != nil {
		t.Fatalf("SetConfigInt: %v", err)
	}
	if got, _ := st.GetConfigInt("max_results"); got != 5 {
		t.Fatalf("更新后 = %d", got)
	}

	if err := st.SetConfig("query_keywords", "产品 特性"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	all, err := st.GetAllConfig()
	if err != nil {
		t.Fatalf("GetAllConfig: %v", err)
	}
	if len(all) != 2 || all["query_keywords"] != "产品 特性" {
		t.Fatalf("all = %+v", all)
	}

	if err := st.DeleteConfig("max_results"); err != nil {
		t.Fatalf("DeleteConfig: %v", err)
	}
	if _, err := st.GetConfig("max_results"); err == nil {
		t.Fatal("删除后仍可读取")
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "mindmap.db"))
	if err != nil {
		t.Fatalf("创建测试数据库失败: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insertGen(t *testing.T, st *Store, gen *model.Generation) {
	t.Helper()
	if err := st.InsertGeneration(gen, nil); err != nil {
		t.Fatalf("插入测试记录失败: %v", err)
	}
}
