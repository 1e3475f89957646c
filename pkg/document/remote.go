package document

import (
	"context"
	"net/http"
	"strings"

	"github.com/matzehuels/atlas/pkg/httputil"
	"github.com/matzehuels/atlas/pkg/mapgraph"
)

// IsURL reports whether source names a remote document.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch retrieves and normalizes a remote document. A non-nil cache is
// consulted first and refreshed after a successful fetch; cache write
// failures are ignored since the document itself arrived fine. A nil
// client uses http.DefaultClient.
func Fetch(ctx context.Context, url string, client *http.Client, cache *httputil.Cache) (*mapgraph.Graph, []mapgraph.Warning, error) {
	var body []byte
	if cache != nil {
		if ok, err := cache.Get(url, &body); ok && err == nil {
			return Unmarshal(body)
		}
	}

	body, err := httputil.Fetch(ctx, client, url)
	if err != nil {
		return nil, nil, err
	}
	g, warns, err := Unmarshal(body)
	if err != nil {
		return nil, nil, err
	}
	if cache != nil {
		_ = cache.Set(url, body)
	}
	return g, warns, nil
}

// Open loads a document from a local path or an http(s) URL.
func Open(ctx context.Context, source string, client *http.Client, cache *httputil.Cache) (*mapgraph.Graph, []mapgraph.Warning, error) {
	if IsURL(source) {
		return Fetch(ctx, source, client, cache)
	}
	return Load(source)
}
