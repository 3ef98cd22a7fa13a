package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchParsesHTML(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><h2>云盘</h2><ul><li>同步</li></ul></body></html>`)
	}))
	defer ts.Close()

	f := NewFetcher("test-agent/1.0", 5*time.Second)
	doc, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotUA != "test-agent/1.0" {
		t.Fatalf("User-Agent = %q", gotUA)
	}

	catalog := ExtractProducts(doc, "示例")
	if catalog.Len() != 1 {
		t.Fatalf("抓取页面提取产品数 = %d, want 1", catalog.Len())
	}
}

func TestFetchNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	f := NewFetcher("test-agent/1.0", 5*time.Second)
	if _, err := f.Fetch(context.Background(), ts.URL); err == nil {
		t.Fatal("404 应返回错误")
	}
}

func TestFetchRejectsNonHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4")
	}))
	defer ts.Close()

	f := NewFetcher("test-agent/1.0", 5*time.Second)
	if _, err := f.Fetch(context.Background(), ts.URL); err == nil {
		t.Fatal("非 HTML 内容应返回错误")
	}
}

func TestFetchTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer ts.Close()

	f := NewFetcher("test-agent/1.0", 50*time.Millisecond)
	if _, err := f.Fetch(context.Background(), ts.URL); err == nil {
		t.Fatal("超时应返回错误")
	}
}

func TestFetchRespectsContextCancel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher("test-agent/1.0", 5*time.Second)
	if _, err := f.Fetch(ctx, ts.URL); err == nil {
		t.Fatal("已取消的 context 应返回错误")
	}
}
