package gcs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func staticTokenSource(token string) *tokenSource {
	return &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			return token, time.Now().Add(time.Hour), nil
		},
	}
}

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		httpClient:  server.Client(),
		bucket:      "test-bucket",
		tokenSource: staticTokenSource("test-token"),
		apiBase:     server.URL,
	}
}

func TestUploadSendsObjectAndAuth(t *testing.T) {
	var gotPath, gotAuth, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"users/u1/report.pdf","size":"11","contentType":"application/pdf","updated":"2026-08-01T12:00:00Z"}`))
	}))
	defer server.Close()

	info, err := newTestClient(server).Upload(context.Background(), "users/u1/report.pdf", "application/pdf", strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if !strings.Contains(gotPath, "/upload/storage/v1/b/test-bucket/o") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotPath, "name=users%2Fu1%2Freport.pdf") {
		t.Fatalf("object name missing from %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotContentType != "application/pdf" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if gotBody != "hello world" {
		t.Fatalf("body not streamed, got %q", gotBody)
	}
	if info.Name != "users/u1/report.pdf" || info.SizeBytes != 11 {
		t.Fatalf("unexpected object info %+v", info)
	}
}

func TestUploadSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server).Upload(context.Background(), "users/u1/a.txt", "text/plain", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestListObjectsFollowsPagination(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if prefix := r.URL.Query().Get("prefix"); prefix != "users/u1/" {
			t.Errorf("unexpected prefix %q", prefix)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{"items":[{"name":"users/u1/a.txt","size":"3"}],"nextPageToken":"page2"}`))
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"name":"users/u1/b.txt","size":"4"}]}`))
	}))
	defer server.Close()

	objects, err := newTestClient(server).ListObjects(context.Background(), "users/u1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 page fetches, got %d", calls)
	}
	if len(objects) != 2 || objects[0].Name != "users/u1/a.txt" || objects[1].Name != "users/u1/b.txt" {
		t.Fatalf("unexpected objects %+v", objects)
	}
	if objects[1].SizeBytes != 4 {
		t.Fatalf("size not parsed, got %+v", objects[1])
	}
}

func TestDeleteObjectToleratesMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if err := newTestClient(server).DeleteObject(context.Background(), "users/u1/gone.txt"); err != nil {
		t.Fatalf("expected missing object tolerated, got %v", err)
	}
}
