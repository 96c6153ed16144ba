package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSimpleSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><title>Hi</title></html>"))
	}))
	defer srv.Close()

	f := New(DefaultOptions(), nil)
	res, err := f.Simple(context.Background(), Request{URL: srv.URL, UserAgent: "test-agent/1.0"})
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}
	if gotUA != "test-agent/1.0" {
		t.Errorf("user agent = %q", gotUA)
	}
	if !res.IsHTML() || res.ContentType != "text/html" {
		t.Errorf("content type = %q", res.ContentType)
	}
	if !strings.Contains(res.HTML, "<title>Hi</title>") {
		t.Errorf("HTML = %q", res.HTML)
	}
}

func TestSimpleFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("new"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := New(DefaultOptions(), nil).Simple(context.Background(), Request{URL: srv.URL + "/old"})
	if err != nil {
		t.Fatal(err)
	}
	if res.FinalURL != srv.URL+"/new" {
		t.Errorf("FinalURL = %q", res.FinalURL)
	}
}

func TestSimpleSkipsBinaryBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write([]byte("PK\x03\x04 not really a zip"))
	}))
	defer srv.Close()

	res, err := New(DefaultOptions(), nil).Simple(context.Background(), Request{URL: srv.URL + "/a.zip"})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsHTML() {
		t.Error("zip should not be a page")
	}
	if res.HTML != "" {
		t.Error("binary body should not be read")
	}
}

func TestSimpleSniffsMissingContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write([]byte("<!DOCTYPE html><html><body>sniffed</body></html>"))
	}))
	defer srv.Close()

	res, err := New(DefaultOptions(), nil).Simple(context.Background(), Request{URL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if res.ContentType != "text/html" {
		t.Errorf("sniffed type = %q", res.ContentType)
	}
	if !strings.Contains(res.HTML, "sniffed") {
		t.Errorf("sniffed bytes lost: %q", res.HTML)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<!DOCTYPE html><html><title>Local</title></html>"), 0644); err != nil {
		t.Fatal(err)
	}

	f := New(DefaultOptions(), nil)
	for _, in := range []string{path, "file://" + path} {
		res, err := f.File(in)
		if err != nil {
			t.Fatalf("File(%q): %v", in, err)
		}
		if !res.IsHTML() {
			t.Errorf("File(%q) type = %q", in, res.ContentType)
		}
		if !strings.HasPrefix(res.FinalURL, "file://") {
			t.Errorf("FinalURL = %q", res.FinalURL)
		}
	}

	if _, err := f.File(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMediaType(t *testing.T) {
	tests := map[string]string{
		"text/HTML; charset=utf-8": "text/html",
		"application/pdf":          "application/pdf",
		"":                         "",
	}
	for in, want := range tests {
		if got := mediaType(in); got != want {
			t.Errorf("mediaType(%q) = %q, want %q", in, got, want)
		}
	}
}
