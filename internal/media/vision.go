package media

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hibuddy/hibuddy/internal/llm"
	"github.com/hibuddy/hibuddy/internal/logging"
)

// keepScore is the minimum score for a photo judged suitable.
const keepScore = 60

// VisionService is the multimodal completion call the filter needs.
type VisionService interface {
	Complete(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// VisionFilter scores image candidates against a menu name so the
// coordinator sees actual food photos first instead of logos and menus.
type VisionFilter struct {
	vision VisionService
	model  string
	logger *logging.Logger
}

// NewVisionFilter creates a filter using the given vision model.
func NewVisionFilter(vision VisionService, model string) *VisionFilter {
	return &VisionFilter{
		vision: vision,
		model:  model,
		logger: logging.WithField("component", "vision_filter"),
	}
}

type visionVerdict struct {
	Index int    `json:"index"`
	Score int    `json:"score"`
	Label string `json:"label"`
}

// Filter annotates each image with a score and keeps the suitable ones,
// best first. Any failure returns the input unchanged; a missing photo
// is better than no photo.
func (f *VisionFilter) Filter(ctx context.Context, menuName string, images []ImageResult) []ImageResult {
	if len(images) == 0 {
		return nil
	}

	prompt := fmt.Sprintf(`너는 음식 사진을 분류하는 도우미야.

아래에는 '%s'이라는 메뉴 후보에 대한 여러 이미지가 있어.
각 이미지는 "이미지 0", "이미지 1", ... 순서로 주어진다고 생각해.

각 이미지가 '%s' 음식 사진으로 얼마나 적절한지 평가해 줘.

반드시 다음 JSON 형식만 출력해:
{
  "results": [
    {"index": 0, "score": 0, "label": "부적합"},
    {"index": 1, "score": 85, "label": "적합"}
  ]
}

- index: 이미지 번호 (0부터 시작)
- score: 0~100 사이 정수 (높을수록 더 잘 맞음)
- label: "적합" 또는 "부적합"`, menuName, menuName)

	parts := []llm.ContentPart{{Type: "text", Text: prompt}}
	for i, img := range images {
		parts = append(parts,
			llm.ContentPart{Type: "text", Text: fmt.Sprintf("이미지 %d", i)},
			llm.ContentPart{Type: "image_url", ImageURL: &llm.ImageURL{URL: img.Link}},
		)
	}

	resp, err := f.vision.Complete(ctx, llm.ChatRequest{
		Model:          f.model,
		Messages:       []llm.Message{{Role: "user", Content: parts}},
		MaxTokens:      512,
		ResponseFormat: &llm.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		f.logger.Warn("vision filter failed, keeping raw results: %v", err)
		return images
	}
	if len(resp.Choices) == 0 {
		return images
	}

	var parsed struct {
		Results []visionVerdict `json:"results"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		f.logger.Warn("vision filter returned bad JSON, keeping raw results")
		return images
	}

	byIndex := make(map[int]visionVerdict, len(parsed.Results))
	for _, v := range parsed.Results {
		byIndex[v.Index] = v
	}

	var annotated []ImageResult
	for i, img := range images {
		v, ok := byIndex[i]
		if !ok {
			continue
		}
		img.Score = v.Score
		img.Label = v.Label
		annotated = append(annotated, img)
	}
	if len(annotated) == 0 {
		return images
	}

	var good []ImageResult
	for _, img := range annotated {
		if img.Label == "적합" && img.Score >= keepScore {
			good = append(good, img)
		}
	}
	if len(good) > 0 {
		sort.SliceStable(good, func(i, j int) bool { return good[i].Score > good[j].Score })
		return good
	}

	// nothing suitable; best guesses first
	sort.SliceStable(annotated, func(i, j int) bool { return annotated[i].Score > annotated[j].Score })
	return annotated
}
