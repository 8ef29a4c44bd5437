// Package linkmeta fetches display metadata (title, thumbnail) for external
// links attached to course work and submissions.
package linkmeta

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"classwork_service/internal/errdefs"
	"classwork_service/internal/reconcile"
)

// HTTPResolver fetches the target page and extracts <title> and og:image.
type HTTPResolver struct {
	client *http.Client
}

func NewHTTPResolver(timeout time.Duration) *HTTPResolver {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPResolver{client: &http.Client{Timeout: timeout}}
}

func (r *HTTPResolver) Resolve(ctx context.Context, url string) (reconcile.LinkMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return reconcile.LinkMetadata{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return reconcile.LinkMetadata{}, fmt.Errorf("fetch %s: %w", url, errdefs.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return reconcile.LinkMetadata{}, fmt.Errorf("fetch %s: status %d: %w", url, resp.StatusCode, errdefs.ErrUnavailable)
	}

	meta := parseMetadata(resp)
	if meta.Title == "" {
		return reconcile.LinkMetadata{}, fmt.Errorf("no title found for %s: %w", url, errdefs.ErrNotFound)
	}
	return meta, nil
}

func parseMetadata(resp *http.Response) reconcile.LinkMetadata {
	var meta reconcile.LinkMetadata

	tokenizer := html.NewTokenizer(resp.Body)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return meta
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "title":
				if meta.Title == "" && tokenizer.Next() == html.TextToken {
					meta.Title = strings.TrimSpace(tokenizer.Token().Data)
				}
			case "meta":
				var property, content string
				for _, attr := range token.Attr {
					switch attr.Key {
					case "property", "name":
						property = attr.Val
					case "content":
						content = attr.Val
					}
				}
				switch property {
				case "og:title":
					if content != "" {
						meta.Title = content
					}
				case "og:image":
					if meta.ThumbnailURL == "" {
						meta.ThumbnailURL = content
					}
				}
			case "body":
				// Nothing useful past the head.
				return meta
			}
		}
	}
}
