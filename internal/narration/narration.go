// Package narration decides, once per polling tick, whether anything
// should be spoken and what. The session state is deliberately
// process-local: restarting the follow-along screen re-introduces the
// current activity once, which is the behavior a caregiver expects.
package narration

import (
	"fmt"

	"github.com/hibuddy/hibuddy/internal/core"
	"github.com/hibuddy/hibuddy/internal/timeline"
)

// Chime precedes every slot introduction.
const Chime = "띵동! 알림이 왔습니다."

// DefaultPreNoticeMinutes is how far ahead the get-ready reminder fires.
const DefaultPreNoticeMinutes = 5

// Kind distinguishes why a narration fired.
type Kind string

const (
	KindGreeting  Kind = "greeting"
	KindSlotIntro Kind = "slot_intro"
	KindPreNotice Kind = "pre_notice"
)

// Narration is one utterance to hand to speech synthesis.
type Narration struct {
	Kind  Kind       `json:"kind"`
	Lines []string   `json:"lines"` // spoken in order
	Slot  *core.Slot `json:"slot,omitempty"`
}

// Session holds the per-session dedupe state. Zero value is ready to use.
type Session struct {
	date             string
	greeted          bool
	lastNarratedKey  string
	lastPreNoticeKey string

	// PreNoticeMinutes overrides the reminder window when positive.
	PreNoticeMinutes int
}

// NewSession returns a session with the default pre-notice window.
func NewSession() *Session {
	return &Session{PreNoticeMinutes: DefaultPreNoticeMinutes}
}

// slotKey identifies a slot for dedupe purposes. Any edit to time,
// category or task makes it a new slot as far as narration is concerned.
func slotKey(date string, s *core.Slot) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%s_%s_%s_%s", date, s.Time, s.Category, s.Task)
}

// Evaluate runs one tick of the state machine. It returns at most one
// narration. Precedence: the once-per-date greeting, then a change of
// active slot, then the pre-notice for an upcoming slot. Repeated ticks
// in the same state return nil.
func (s *Session) Evaluate(date string, pos timeline.Position, now core.TimeOfDay) *Narration {
	if s.date != date {
		s.date = date
		s.greeted = false
		s.lastNarratedKey = ""
		s.lastPreNoticeKey = ""
	}

	if !s.greeted {
		s.greeted = true
		s.lastNarratedKey = slotKey(date, pos.Active)
		return &Narration{
			Kind:  KindGreeting,
			Lines: greetingLines(now, pos.Active),
			Slot:  pos.Active,
		}
	}

	if pos.Active != nil {
		if key := slotKey(date, pos.Active); key != s.lastNarratedKey {
			s.lastNarratedKey = key
			return &Narration{
				Kind:  KindSlotIntro,
				Lines: introLines(pos.Active),
				Slot:  pos.Active,
			}
		}
	}

	window := s.PreNoticeMinutes
	if window <= 0 {
		window = DefaultPreNoticeMinutes
	}
	if pos.Next != nil {
		start := pos.Next.StartTime()
		if start > now && int(start-now) <= window {
			if key := slotKey(date, pos.Next); key != s.lastPreNoticeKey {
				s.lastPreNoticeKey = key
				return &Narration{
					Kind:  KindPreNotice,
					Lines: preNoticeLines(pos.Next, int(start-now)),
					Slot:  pos.Next,
				}
			}
		}
	}

	return nil
}

// SlotIntro builds the spoken introduction for a slot. Exposed so the
// manual replay button can reuse the exact same wording.
func SlotIntro(slot *core.Slot) string {
	label := slot.Category.Label()
	if task := slot.Task; task != "" {
		return fmt.Sprintf("지금은 %s 시간이에요. %s을 시작해볼게요.", label, task)
	}
	return fmt.Sprintf("지금은 %s 시간이에요.", label)
}

func introLines(slot *core.Slot) []string {
	lines := []string{Chime, SlotIntro(slot)}
	if len(slot.GuideScript) > 0 {
		lines = append(lines, slot.GuideScript[0])
	}
	return lines
}

func greetingLines(now core.TimeOfDay, active *core.Slot) []string {
	var greeting string
	switch h := now.Hour(); {
	case h >= 5 && h < 12:
		greeting = "좋은 아침이에요!"
	case h >= 12 && h < 18:
		greeting = "안녕하세요!"
	default:
		greeting = "좋은 저녁이에요!"
	}
	lines := []string{greeting}
	if active != nil {
		lines = append(lines, SlotIntro(active))
	} else {
		lines = append(lines, "아직 시작된 일정이 없어요.")
	}
	return lines
}

func preNoticeLines(next *core.Slot, minutes int) []string {
	return []string{
		fmt.Sprintf("%d분 뒤에 %s 시간이 시작돼요. %s, 미리 준비해 볼까요?",
			minutes, next.Category.Label(), next.Task),
	}
}
