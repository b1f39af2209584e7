package planner

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hibuddy/hibuddy/internal/core"
)

type stubChat struct {
	response string
	err      error
	gotSys   string
	gotUser  string
}

func (s *stubChat) ChatJSON(ctx context.Context, system, prompt string) (string, error) {
	s.gotSys = system
	s.gotUser = prompt
	return s.response, s.err
}

func TestGenerateSchedule(t *testing.T) {
	chat := &stubChat{response: `{
		"schedule": [
			{"time": "12:00", "type": "MEAL", "task": "점심 먹기", "guide_script": ["손을 씻어요."]},
			{"time": "08:00", "type": "MORNING", "task": "아침 인사", "guide_script": ["좋은 아침이에요."]}
		]
	}`}

	got, err := New(chat).GenerateSchedule(context.Background(), "8시에 아침 인사, 12시에 점심")
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("slot count = %d", len(got))
	}
	// Sorted by time, aliases coerced.
	if got[0].Time != "08:00" || got[0].Category != core.CategoryMorningBriefing {
		t.Errorf("first slot = %+v", got[0])
	}
	if got[1].Category != core.CategoryMeal {
		t.Errorf("second slot category = %s", got[1].Category)
	}
	if !strings.Contains(chat.gotUser, "8시에 아침 인사") {
		t.Errorf("user prompt missing input text: %q", chat.gotUser)
	}
}

func TestGenerateScheduleEmptyInput(t *testing.T) {
	chat := &stubChat{response: "should not be called"}
	got, err := New(chat).GenerateSchedule(context.Background(), "   ")
	if err != nil || got != nil {
		t.Fatalf("empty input = %v, %v", got, err)
	}
	if chat.gotUser != "" {
		t.Error("service was called for empty input")
	}
}

func TestGenerateScheduleServiceError(t *testing.T) {
	chat := &stubChat{err: errors.New("down")}
	if _, err := New(chat).GenerateSchedule(context.Background(), "일정"); err == nil {
		t.Fatal("expected error when service fails")
	}
}

func TestGenerateScheduleGarbledFallback(t *testing.T) {
	chat := &stubChat{response: "definitely { not json"}
	got, err := New(chat).GenerateSchedule(context.Background(), "일정")
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if len(got) != 1 || got[0].Category != core.CategoryGeneral {
		t.Fatalf("fallback = %+v", got)
	}
	if !strings.Contains(got[0].Task, "다시 요청") {
		t.Errorf("fallback task = %q", got[0].Task)
	}
}

func TestGenerateScheduleBareArray(t *testing.T) {
	chat := &stubChat{response: `[{"time":"10:00","type":"HEALTH","task":"산책하기"}]`}
	got, err := New(chat).GenerateSchedule(context.Background(), "산책")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if len(got) != 1 || got[0].Category != core.CategoryHealth {
		t.Fatalf("slots = %+v", got)
	}
}

func TestGenerateScheduleCodeFence(t *testing.T) {
	chat := &stubChat{response: "```json\n{\"schedule\":[{\"time\":\"10:00\",\"type\":\"GENERAL\",\"task\":\"공부하기\"}]}\n```"}
	got, err := New(chat).GenerateSchedule(context.Background(), "공부")
	if err != nil || len(got) != 1 {
		t.Fatalf("fenced response = %+v, %v", got, err)
	}
}

func TestGuideScriptAsString(t *testing.T) {
	chat := &stubChat{response: `{"schedule":[{"time":"10:00","type":"GENERAL","task":"공부하기","guide_script":"책을 펴요."}]}`}
	got, err := New(chat).GenerateSchedule(context.Background(), "공부")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if !reflect.DeepEqual(got[0].GuideScript, []string{"책을 펴요."}) {
		t.Errorf("guide script = %v", got[0].GuideScript)
	}
}

func TestExtractMenuNames(t *testing.T) {
	chat := &stubChat{response: `{"menus": ["라면", " 카레 ", ""]}`}
	got, err := New(chat).ExtractMenuNames(context.Background(), "라면 또는 카레 중 하나 먹기")
	if err != nil {
		t.Fatalf("ExtractMenuNames() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"라면", "카레"}) {
		t.Errorf("names = %v", got)
	}
}

func TestExtractMenuNamesEmptyTask(t *testing.T) {
	chat := &stubChat{response: `{"menus":["x"]}`}
	got, err := New(chat).ExtractMenuNames(context.Background(), "  ")
	if err != nil || got != nil {
		t.Fatalf("empty task = %v, %v", got, err)
	}
}

func TestExtractMenuNamesBadResponse(t *testing.T) {
	chat := &stubChat{response: `nope`}
	if _, err := New(chat).ExtractMenuNames(context.Background(), "라면 먹기"); err == nil {
		t.Fatal("expected error for unparseable response")
	}
}
