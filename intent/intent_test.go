package intent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r := NewResolver(t.TempDir(), nil)

	tests := []struct {
		name   string
		in     *Intent
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"not view", &Intent{Action: "send", Data: "https://a.example"}, "", false},
		{"https", &Intent{Action: ActionView, Data: "https://a.example/x"}, "https://a.example/x", true},
		{"http upper scheme", &Intent{Action: ActionView, Data: "HTTP://a.example"}, "HTTP://a.example", true},
		{"file path", &Intent{Action: ActionView, Data: "file:///srv/page.txt"}, "/srv/page.txt", true},
		{"other scheme", &Intent{Action: ActionView, Data: "mailto:a@b.c"}, "", false},
		{"bare word", &Intent{Action: ActionView, Data: "example.com"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveHTMLCopiesToCache(t *testing.T) {
	src := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(src, []byte("<html><title>x</title></html>"), 0644))

	cache := t.TempDir()
	r := NewResolver(cache, nil)

	got, ok := r.Resolve(&Intent{Action: ActionView, Data: "file://" + src, Type: "text/html"})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(got, "file://"))
	assert.True(t, strings.HasSuffix(got, "temp.html"))

	data, err := os.ReadFile(filepath.Join(cache, "temp.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>x</title>")
}

func TestResolveHTMLCopyFailure(t *testing.T) {
	r := NewResolver(t.TempDir(), nil)
	_, ok := r.Resolve(&Intent{Action: ActionView, Data: "file:///does/not/exist.html", Type: "text/html"})
	assert.False(t, ok)
}

func TestHTTPBeatsHTMLType(t *testing.T) {
	r := NewResolver(t.TempDir(), nil)
	got, ok := r.Resolve(&Intent{Action: ActionView, Data: "https://a.example/p.html", Type: "text/html"})
	require.True(t, ok)
	assert.Equal(t, "https://a.example/p.html", got)
}

func TestFromArg(t *testing.T) {
	assert.Nil(t, FromArg(""))

	in := FromArg("https://a.example")
	assert.Equal(t, &Intent{Action: ActionView, Data: "https://a.example"}, in)

	path := filepath.Join(t.TempDir(), "doc.html")
	require.NoError(t, os.WriteFile(path, []byte("<!DOCTYPE html><html><body>hi</body></html>"), 0644))

	in = FromArg(path)
	require.NotNil(t, in)
	assert.Equal(t, ActionView, in.Action)
	assert.Equal(t, "text/html", in.Type)
	assert.True(t, strings.HasPrefix(in.Data, "file://"))
}
