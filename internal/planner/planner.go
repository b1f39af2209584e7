// Package planner turns a coordinator's free-text day description into
// a slot list, and extracts menu names from task sentences. All output
// is untrusted until the guardrail passes have run.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibuddy/hibuddy/internal/core"
	"github.com/hibuddy/hibuddy/internal/logging"
	"github.com/hibuddy/hibuddy/internal/timeline"
)

// ChatService is the JSON-mode chat the planner needs. llm.Router and
// llm.Client both satisfy it.
type ChatService interface {
	ChatJSON(ctx context.Context, system, prompt string) (string, error)
}

// Planner generates schedules and menu suggestions via the chat service.
type Planner struct {
	chat   ChatService
	logger *logging.Logger
}

// New creates a planner.
func New(chat ChatService) *Planner {
	return &Planner{
		chat:   chat,
		logger: logging.WithField("component", "planner"),
	}
}

const scheduleSystemPrompt = `당신은 발달장애인 당사자를 위한 하루 일정 코디네이터입니다.

역할:
- 코디네이터(보호자, 교사 등)가 쓴 자연어 일정을 읽고,
- 당사자가 이해하기 쉬운 '슬롯' 리스트로 변환합니다.
- 각 슬롯은 한 가지 활동만 포함합니다.

!!! 출력 형식 매우 중요 !!!
- 출력은 반드시 하나의 JSON 객체(object)만이어야 합니다.
- 최상위 키는 반드시 "schedule" 이어야 합니다.
- 구조는 다음과 같습니다.

{
  "schedule": [
    {
      "time": "08:00",
      "type": "MORNING_BRIEFING",
      "task": "아침 인사 및 오늘 일정 안내",
      "guide_script": [
        "좋은 아침이에요.",
        "오늘 하루 계획을 함께 살펴볼게요."
      ]
    }
  ]
}

각 필드 설명:
- time: "HH:MM" 24시간 형식 문자열 (예: "08:00", "13:30")
- type: MORNING_BRIEFING, MEAL, COOKING, HEALTH, CLOTHING, HOBBY, ROUTINE, GENERAL, NIGHT_WRAPUP 중 하나
- task: 당사자가 이해하기 쉬운 한 줄 설명 (예: "라면 또는 카레 중 하나 먹기")
- guide_script: 발달장애인이 보기 쉬운 짧은 문장 배열
  - 존댓말 사용 (예: "~해요.")
  - 한 문장도 너무 길지 않게
  - 단계별로 천천히 안내

주의:
- time 은 반드시 "HH:MM" 형식만 사용합니다.
- guide_script 는 적어도 1개 이상의 문자열을 포함해야 합니다.
- JSON 외의 설명, 코드블럭, 텍스트를 절대 추가하지 마세요.`

// rawSlot tolerates the looseness of generated output: guide_script may
// be a string or an array, type may be any casing or alias.
type rawSlot struct {
	Time        string          `json:"time"`
	Type        string          `json:"type"`
	Task        string          `json:"task"`
	GuideScript json.RawMessage `json:"guide_script"`
}

// GenerateSchedule converts the coordinator's description into slots.
// Empty input yields an empty list without calling the service. A
// service failure returns the error; a garbled (non-JSON-shaped)
// success degrades to a single fallback slot asking for regeneration,
// because the follow-along screen must always have something to show.
func (p *Planner) GenerateSchedule(ctx context.Context, text string) ([]core.Slot, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	prompt := "다음은 코디네이터가 적은 오늘 하루 일정 설명입니다.\n" +
		"위에서 설명한 JSON 형식에 맞게 'schedule' 필드를 가진 하나의 객체로 변환해 주세요.\n\n" +
		text

	content, err := p.chat.ChatJSON(ctx, scheduleSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("schedule generation: %w", err)
	}

	slots, ok := parseScheduleJSON(content)
	if !ok {
		p.logger.Warn("generator returned unparseable schedule, using fallback slot")
		return []core.Slot{fallbackSlot()}, nil
	}

	timeline.SortSlots(slots)
	return slots, nil
}

// parseScheduleJSON accepts {"schedule":[...]} or a bare array.
func parseScheduleJSON(content string) ([]core.Slot, bool) {
	content = stripCodeFences(content)

	var wrapper struct {
		Schedule []rawSlot `json:"schedule"`
	}
	var raws []rawSlot
	if err := json.Unmarshal([]byte(content), &wrapper); err == nil && wrapper.Schedule != nil {
		raws = wrapper.Schedule
	} else if err := json.Unmarshal([]byte(content), &raws); err != nil {
		return nil, false
	}

	slots := make([]core.Slot, 0, len(raws))
	for _, r := range raws {
		slots = append(slots, core.Slot{
			Time:        r.Time,
			Category:    core.ParseCategory(r.Type),
			Task:        r.Task,
			GuideScript: parseGuideScript(r.GuideScript),
		})
	}
	return slots, true
}

// parseGuideScript accepts a string, an array of strings, or nothing.
func parseGuideScript(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		out := lines[:0]
		for _, l := range lines {
			if l != "" {
				out = append(out, l)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

func fallbackSlot() core.Slot {
	return core.Slot{
		Time:     "09:00",
		Category: core.CategoryGeneral,
		Task:     "일정 변환 오류. 코디네이터에게 다시 요청하기",
		GuideScript: []string{
			"일정을 불러오는 데 문제가 생겼어요.",
			"코디네이터에게 다시 한 번 일정을 만들어 달라고 부탁해 주세요.",
		},
	}
}

// stripCodeFences removes a markdown fence a model sometimes wraps its
// JSON in despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

const menuSystemPrompt = `당사자의 활동 문장에서 음식 이름만 뽑아주세요.
출력은 반드시 {"menus": ["...", "..."]} 형태의 JSON 객체 하나여야 합니다.
음식 이름이 없으면 {"menus": []} 을 반환하세요.
동사나 설명 없이 음식 이름만 포함하세요.`

// ExtractMenuNames asks the model for food names in a task sentence.
// Satisfies guardrail.MenuExtractor; callers fall back to the rule
// split when this errors or comes back empty.
func (p *Planner) ExtractMenuNames(ctx context.Context, task string) ([]string, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, nil
	}

	content, err := p.chat.ChatJSON(ctx, menuSystemPrompt, task)
	if err != nil {
		return nil, fmt.Errorf("menu extraction: %w", err)
	}

	var wrapper struct {
		Menus []string `json:"menus"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &wrapper); err != nil {
		return nil, fmt.Errorf("menu extraction: bad response: %w", err)
	}

	var names []string
	for _, n := range wrapper.Menus {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names, nil
}
