// Package weather builds an easy-to-understand weather summary and
// clothing guide for the day. It reads web search snippets for
// "<지역> 오늘 날씨" and asks the model to phrase the advice in simple
// Korean the user can follow.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/hibuddy/hibuddy/internal/core"
	"github.com/hibuddy/hibuddy/internal/logging"
)

// Advice is the clothing guidance shown on the coordinator screen and
// read aloud on the follow-along screen.
type Advice struct {
	Location       string   `json:"location"`
	WeatherSummary string   `json:"weather_summary"`
	Clothes        []string `json:"clothes"`
	GuideScript    []string `json:"guide_script"`
}

// SnippetSource fetches raw weather text for a location.
type SnippetSource interface {
	WeatherSnippets(ctx context.Context, location string) (string, error)
}

// ChatService is the strict-JSON chat call the advisor needs.
type ChatService interface {
	ChatJSON(ctx context.Context, system, userMessage string) (string, error)
}

// GoogleSnippetSource reads weather snippets from Google Custom Search
// in plain web mode. The same engine id as the image search works; the
// engine just has to allow web results.
type GoogleSnippetSource struct {
	svc      *customsearch.Service
	engineID string
}

// NewGoogleSnippetSource creates a snippet source with an API key and
// search engine id. Extra options are for tests.
func NewGoogleSnippetSource(ctx context.Context, apiKey, engineID string, opts ...option.ClientOption) (*GoogleSnippetSource, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("customsearch service: %w", err)
	}
	return &GoogleSnippetSource{svc: svc, engineID: engineID}, nil
}

// WeatherSnippets joins the top result snippets for "<지역> 오늘 날씨".
func (s *GoogleSnippetSource) WeatherSnippets(ctx context.Context, location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", nil
	}

	resp, err := s.svc.Cse.List().
		Q(location + " 오늘 날씨").
		Cx(s.engineID).
		Safe("active").
		Num(5).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%w: weather: %v", core.ErrSearchFailed, err)
	}

	var snippets []string
	for _, item := range resp.Items {
		if item.Snippet != "" {
			snippets = append(snippets, item.Snippet)
		}
	}
	return strings.Join(snippets, "\n"), nil
}

// Advisor turns raw weather snippets into clothing advice.
type Advisor struct {
	source SnippetSource
	chat   ChatService
	logger *logging.Logger
}

// NewAdvisor creates an advisor.
func NewAdvisor(source SnippetSource, chat ChatService) *Advisor {
	return &Advisor{
		source: source,
		chat:   chat,
		logger: logging.WithField("component", "weather"),
	}
}

const advisorSystemPrompt = `너는 발달장애인이 이해하기 쉬운 한국어로 옷차림을 추천하는 도우미야.
반드시 다음 JSON 형식으로만 답해. 다른 설명은 쓰지 마.

{
  "location": "지역 이름 (예: 서울)",
  "weather_summary": "오늘 날씨를 한두 문장으로, 이해하기 쉬운 말로 정리",
  "clothes": ["권장 옷차림 1", "권장 옷차림 2"],
  "guide_script": [
    "사용자 화면에서 순서대로 읽어줄 간단한 안내 문장 1",
    "사용자 화면에서 순서대로 읽어줄 간단한 안내 문장 2"
  ]
}`

// Advise looks up today's weather for the location and returns clothing
// guidance. It never fails outright; when search or the model break it
// returns advice telling the coordinator to guide by hand.
func (a *Advisor) Advise(ctx context.Context, location string) Advice {
	location = strings.TrimSpace(location)

	raw, err := a.source.WeatherSnippets(ctx, location)
	if err != nil {
		a.logger.Warn("weather search failed: %v", err)
		raw = ""
	}
	if strings.TrimSpace(raw) == "" {
		return Advice{
			Location:       location,
			WeatherSummary: "오늘 날씨 정보를 찾지 못했습니다.",
			Clothes:        []string{},
			GuideScript: []string{
				"날씨 정보를 불러오지 못했어요.",
				"코디네이터가 오늘 입을 옷을 직접 안내해 주세요.",
			},
		}
	}

	user := fmt.Sprintf(`아래는 "%s" 지역의 오늘 날씨에 대한 검색 결과 snippet 모음이야.
이 내용을 토대로, 오늘 하루 외출/등원/산책을 할 때 어떤 옷을 입으면 좋을지 알려줘.

검색 결과 텍스트:
----------------
%s
----------------`, location, raw)

	reply, err := a.chat.ChatJSON(ctx, advisorSystemPrompt, user)
	if err != nil {
		a.logger.Warn("clothing advice failed: %v", err)
		return errorAdvice(location)
	}

	var advice Advice
	if err := json.Unmarshal([]byte(reply), &advice); err != nil {
		a.logger.Warn("clothing advice returned bad JSON")
		return errorAdvice(location)
	}

	if advice.Location == "" {
		advice.Location = location
	}
	if advice.Clothes == nil {
		advice.Clothes = []string{}
	}
	if advice.GuideScript == nil {
		advice.GuideScript = []string{}
	}
	return advice
}

func errorAdvice(location string) Advice {
	return Advice{
		Location:       location,
		WeatherSummary: "날씨 요약 생성 중 오류가 발생했습니다.",
		Clothes:        []string{},
		GuideScript: []string{
			"날씨 정보를 읽어오다가 오류가 발생했어요.",
			"코디네이터가 오늘 입을 옷을 직접 안내해 주세요.",
		},
	}
}
