package notionapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func pageJSON(todayChecked bool, title string) string {
	checked := "false"
	if todayChecked {
		checked = "true"
	}
	return `{
		"object": "page",
		"id": "page-1",
		"properties": {
			"Today": {"type": "checkbox", "checkbox": ` + checked + `},
			"Name": {"type": "title", "title": [{"plain_text": "` + title + `"}]}
		}
	}`
}

func TestFetchPage(t *testing.T) {
	var gotPath, gotAuth, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		_, _ = w.Write([]byte(pageJSON(true, "Ship release")))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token")
	page, err := c.FetchPage(context.Background(), "page-1")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	if gotPath != "/v1/pages/page-1" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if gotVersion != "2022-06-28" {
		t.Fatalf("version = %q", gotVersion)
	}
	if !page.Today || page.Title != "Ship release" || page.ID != "page-1" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestFetchPageTodayUnchecked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(pageJSON(false, "Later")))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	page, err := c.FetchPage(context.Background(), "page-1")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if page.Today {
		t.Fatal("expected Today unchecked")
	}
}

func TestFetchPageMissingProperties(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"object": "page", "id": "page-2", "properties": {}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	page, err := c.FetchPage(context.Background(), "page-2")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if page.Today {
		t.Fatal("missing checkbox must read as unchecked")
	}
	if page.Title != "Unknown Title" {
		t.Fatalf("title = %q, want Unknown Title", page.Title)
	}
}

func TestFetchPageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"restricted"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	if _, err := c.FetchPage(context.Background(), "page-1"); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestFetchPageNoToken(t *testing.T) {
	c := NewClient("http://unused", "")
	if _, err := c.FetchPage(context.Background(), "page-1"); err == nil {
		t.Fatal("expected error without api token")
	}
}
