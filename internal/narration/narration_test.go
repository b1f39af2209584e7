package narration

import (
	"strings"
	"testing"

	"github.com/hibuddy/hibuddy/internal/core"
	"github.com/hibuddy/hibuddy/internal/timeline"
)

func lunchSlot() *core.Slot {
	return &core.Slot{
		ID:          "lunch",
		Time:        "12:00",
		Category:    core.CategoryMeal,
		Task:        "점심 먹기",
		GuideScript: []string{"손을 씻어요.", "자리에 앉아요."},
	}
}

func walkSlot() *core.Slot {
	return &core.Slot{ID: "walk", Time: "15:30", Category: core.CategoryHealth, Task: "산책하기"}
}

func TestFirstTickGreets(t *testing.T) {
	s := NewSession()
	n := s.Evaluate("2025-03-14", timeline.Position{Active: lunchSlot()}, core.MinutesOfDay(12, 10))
	if n == nil || n.Kind != KindGreeting {
		t.Fatalf("first tick = %+v, want greeting", n)
	}
	if n.Lines[0] != "안녕하세요!" {
		t.Errorf("midday greeting = %q", n.Lines[0])
	}
	if !strings.Contains(n.Lines[1], "점심 먹기") {
		t.Errorf("greeting should introduce the active slot, got %q", n.Lines[1])
	}
}

func TestGreetingBeforeDayStarts(t *testing.T) {
	s := NewSession()
	n := s.Evaluate("2025-03-14", timeline.Position{Next: lunchSlot()}, core.MinutesOfDay(6, 0))
	if n == nil || n.Kind != KindGreeting {
		t.Fatalf("n = %+v", n)
	}
	if n.Lines[0] != "좋은 아침이에요!" {
		t.Errorf("morning greeting = %q", n.Lines[0])
	}
	if n.Lines[1] != "아직 시작된 일정이 없어요." {
		t.Errorf("no-active line = %q", n.Lines[1])
	}
}

func TestSameSlotDoesNotRepeat(t *testing.T) {
	s := NewSession()
	pos := timeline.Position{Active: lunchSlot()}
	s.Evaluate("2025-03-14", pos, core.MinutesOfDay(12, 10))
	for min := 11; min < 20; min++ {
		if n := s.Evaluate("2025-03-14", pos, core.MinutesOfDay(12, min)); n != nil {
			t.Fatalf("tick at 12:%02d re-narrated: %+v", min, n)
		}
	}
}

func TestSlotChangeNarratesOnce(t *testing.T) {
	s := NewSession()
	s.Evaluate("2025-03-14", timeline.Position{Active: lunchSlot()}, core.MinutesOfDay(12, 10))

	pos := timeline.Position{Active: walkSlot()}
	n := s.Evaluate("2025-03-14", pos, core.MinutesOfDay(15, 30))
	if n == nil || n.Kind != KindSlotIntro {
		t.Fatalf("slot change tick = %+v, want intro", n)
	}
	if n.Lines[0] != Chime {
		t.Errorf("intro should start with the chime, got %q", n.Lines[0])
	}
	if !strings.Contains(n.Lines[1], "운동") || !strings.Contains(n.Lines[1], "산책하기") {
		t.Errorf("intro line = %q", n.Lines[1])
	}
	if again := s.Evaluate("2025-03-14", pos, core.MinutesOfDay(15, 31)); again != nil {
		t.Fatalf("second tick on same slot narrated: %+v", again)
	}
}

func TestEditedSlotCountsAsNew(t *testing.T) {
	s := NewSession()
	s.Evaluate("2025-03-14", timeline.Position{Active: lunchSlot()}, core.MinutesOfDay(12, 10))

	edited := lunchSlot()
	edited.Task = "점심 차려 먹기"
	n := s.Evaluate("2025-03-14", timeline.Position{Active: edited}, core.MinutesOfDay(12, 11))
	if n == nil || n.Kind != KindSlotIntro {
		t.Fatalf("edited slot tick = %+v, want intro", n)
	}
}

func TestPreNoticeFiresOnceInsideWindow(t *testing.T) {
	s := NewSession()
	pos := timeline.Position{Active: lunchSlot(), Next: walkSlot()}
	s.Evaluate("2025-03-14", pos, core.MinutesOfDay(15, 0))

	// 15:24 is outside the 5 minute window
	if n := s.Evaluate("2025-03-14", pos, core.MinutesOfDay(15, 24)); n != nil {
		t.Fatalf("pre-notice fired outside window: %+v", n)
	}
	n := s.Evaluate("2025-03-14", pos, core.MinutesOfDay(15, 26))
	if n == nil || n.Kind != KindPreNotice {
		t.Fatalf("tick inside window = %+v, want pre-notice", n)
	}
	if !strings.Contains(n.Lines[0], "4분 뒤") {
		t.Errorf("pre-notice line = %q", n.Lines[0])
	}
	if again := s.Evaluate("2025-03-14", pos, core.MinutesOfDay(15, 28)); again != nil {
		t.Fatalf("pre-notice repeated inside window: %+v", again)
	}
}

func TestSlotChangeBeatsPreNotice(t *testing.T) {
	s := NewSession()
	s.Evaluate("2025-03-14", timeline.Position{Active: lunchSlot()}, core.MinutesOfDay(12, 0))

	// New active slot and an imminent next slot on the same tick.
	night := &core.Slot{ID: "night", Time: "15:33", Category: core.CategoryNightWrapup, Task: "정리하기"}
	pos := timeline.Position{Active: walkSlot(), Next: night}
	n := s.Evaluate("2025-03-14", pos, core.MinutesOfDay(15, 30))
	if n == nil || n.Kind != KindSlotIntro {
		t.Fatalf("tick = %+v, want the slot intro to win", n)
	}
	// Pre-notice for the night slot still gets its own later tick.
	n2 := s.Evaluate("2025-03-14", pos, core.MinutesOfDay(15, 31))
	if n2 == nil || n2.Kind != KindPreNotice {
		t.Fatalf("followup tick = %+v, want pre-notice", n2)
	}
}

func TestDateChangeResets(t *testing.T) {
	s := NewSession()
	pos := timeline.Position{Active: lunchSlot()}
	s.Evaluate("2025-03-14", pos, core.MinutesOfDay(12, 10))

	n := s.Evaluate("2025-03-15", pos, core.MinutesOfDay(12, 10))
	if n == nil || n.Kind != KindGreeting {
		t.Fatalf("first tick of new date = %+v, want greeting", n)
	}
}

func TestSlotIntroWithoutTask(t *testing.T) {
	slot := &core.Slot{Category: core.CategoryRoutine}
	if got := SlotIntro(slot); got != "지금은 준비/위생 시간이에요." {
		t.Errorf("SlotIntro = %q", got)
	}
}
