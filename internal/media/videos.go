// Package media finds guide videos and food photos for the coordinator
// to attach to slots. Search queries are phrased for slow, easy-to-follow
// content; the coordinator always picks the final result by hand.
package media

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/hibuddy/hibuddy/internal/core"
)

// VideoResult is one video candidate shown to the coordinator.
type VideoResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoID     string `json:"video_id"`
	URL         string `json:"url"`
	Thumbnail   string `json:"thumbnail"`
}

// VideoSearcher wraps the YouTube Data API.
type VideoSearcher struct {
	svc *youtube.Service
}

// NewVideoSearcher creates a searcher with an API key. Extra options are
// for tests (custom endpoint).
func NewVideoSearcher(ctx context.Context, apiKey string, opts ...option.ClientOption) (*VideoSearcher, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return &VideoSearcher{svc: svc}, nil
}

// Search runs a strict-safe-search video query.
func (s *VideoSearcher) Search(ctx context.Context, query string, maxResults int) ([]VideoResult, error) {
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

	resp, err := s.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		SafeSearch("strict").
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: youtube: %v", core.ErrSearchFailed, err)
	}

	results := make([]VideoResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		thumb := ""
		if t := item.Snippet.Thumbnails; t != nil {
			// medium first, default as backup
			if t.Medium != nil {
				thumb = t.Medium.Url
			} else if t.Default != nil {
				thumb = t.Default.Url
			}
		}
		results = append(results, VideoResult{
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			VideoID:     item.Id.VideoId,
			URL:         "https://www.youtube.com/watch?v=" + item.Id.VideoId,
			Thumbnail:   thumb,
		})
	}
	return results, nil
}

// CookingVideoQuery builds the search phrase for a menu's cooking guide.
func CookingVideoQuery(menuName string) string {
	menuName = strings.TrimSpace(menuName)
	if menuName == "" {
		return ""
	}
	return menuName + " 요리 발달장애 쉬운 설명 따라하기 단계별"
}

// ExerciseVideoQuery builds the search phrase for an exercise guide.
func ExerciseVideoQuery(taskOrMode string) string {
	base := strings.TrimSpace(taskOrMode)
	if base == "" {
		base = "운동"
	}
	return "발달장애 " + base + " 운동 쉬운 동작 따라하기 천천히"
}

// ClothingVideoQuery builds the search phrase for a dressing-practice guide.
func ClothingVideoQuery(task string) string {
	return "발달장애 옷 입기 " + strings.TrimSpace(task) + " 실습 영상 따라하기"
}

// SearchCookingVideos finds cooking guides for a menu name.
func (s *VideoSearcher) SearchCookingVideos(ctx context.Context, menuName string, maxResults int) ([]VideoResult, error) {
	return s.Search(ctx, CookingVideoQuery(menuName), maxResults)
}

// SearchExerciseVideos finds exercise guides for a task or mode name.
func (s *VideoSearcher) SearchExerciseVideos(ctx context.Context, taskOrMode string, maxResults int) ([]VideoResult, error) {
	return s.Search(ctx, ExerciseVideoQuery(taskOrMode), maxResults)
}

// SearchClothingVideos finds dressing-practice guides.
func (s *VideoSearcher) SearchClothingVideos(ctx context.Context, task string, maxResults int) ([]VideoResult, error) {
	return s.Search(ctx, ClothingVideoQuery(task), maxResults)
}
