package media

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/hibuddy/hibuddy/internal/core"
)

// ImageResult is one photo candidate for a menu.
type ImageResult struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`

	// Set by the vision filter
	Score int    `json:"score,omitempty"`
	Label string `json:"label,omitempty"`
}

// ImageSearcher wraps the Google Custom Search JSON API in image mode.
type ImageSearcher struct {
	svc      *customsearch.Service
	engineID string
}

// NewImageSearcher creates a searcher with an API key and search engine
// id. Extra options are for tests.
func NewImageSearcher(ctx context.Context, apiKey, engineID string, opts ...option.ClientOption) (*ImageSearcher, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("customsearch service: %w", err)
	}
	return &ImageSearcher{svc: svc, engineID: engineID}, nil
}

// Search runs a safe photo search.
func (s *ImageSearcher) Search(ctx context.Context, query string, maxResults int) ([]ImageResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > 10 {
		maxResults = 10
	}

	resp, err := s.svc.Cse.List().
		Q(query).
		Cx(s.engineID).
		SearchType("image").
		ImgType("photo").
		Safe("active").
		Num(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: customsearch: %v", core.ErrSearchFailed, err)
	}

	results := make([]ImageResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		thumb := item.Link
		if item.Image != nil && item.Image.ThumbnailLink != "" {
			thumb = item.Image.ThumbnailLink
		}
		results = append(results, ImageResult{
			Title:     item.Title,
			Link:      item.Link,
			Thumbnail: thumb,
		})
	}
	return results, nil
}

// SearchFoodImages finds photo candidates for a menu name, querying the
// way a person would ("라면 음식").
func (s *ImageSearcher) SearchFoodImages(ctx context.Context, menuName string, maxResults int) ([]ImageResult, error) {
	menuName = strings.TrimSpace(menuName)
	if menuName == "" {
		return nil, nil
	}
	return s.Search(ctx, menuName+" 음식", maxResults)
}
