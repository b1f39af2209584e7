// Package guardrail repairs slot lists before anyone trusts them.
// Generated schedules arrive with missing ids, unreliable categories and
// leaked markup; every pass here is idempotent so the pipeline can run
// after generation and again after every manual edit.
package guardrail

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/hibuddy/hibuddy/internal/core"
)

// MenuExtractor names food items mentioned in a task sentence.
// An error or empty result just means the rule-based fallback runs.
type MenuExtractor interface {
	ExtractMenuNames(ctx context.Context, task string) ([]string, error)
}

// DefaultMenuImage is the placeholder attached to auto-derived candidates
// until the coordinator picks a real photo.
const DefaultMenuImage = "assets/images/default_food.png"

// Apply runs every normalization pass. Task text is sanitized before
// the keyword passes so leaked tokens never influence classification or
// become menu names. extractor may be nil.
func Apply(ctx context.Context, slots []core.Slot, extractor MenuExtractor) []core.Slot {
	EnsureIDs(slots)
	SanitizeTasks(slots)
	Reclassify(slots)
	AttachMenuCandidates(ctx, slots, extractor)
	return slots
}

// EnsureIDs gives every slot without an id a fresh one. Existing ids
// are never touched.
func EnsureIDs(slots []core.Slot) {
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.New().String()
		}
	}
}

// Keyword tables for category reclassification. The task text is the
// source of truth; the generator's own tag only matters for the
// COOKING demotion rule.
var (
	clothingKeywords = []string{"옷", "갈아입", "입기", "입는", "입어"}
	hygieneKeywords  = []string{"샤워", "세수", "양치", "씻기", "씻어", "머리 감", "손 씻"}
	exerciseKeywords = []string{"운동", "스트레칭", "산책", "체조", "걷기", "헬스", "요가"}
	leisureKeywords  = []string{"여가", "드라마", "유튜브", "영상", "시청", "티비", "TV", "음악", "게임", "놀이"}
	foodKeywords     = []string{"식사", "밥", "먹기", "먹어", "간식", "점심", "저녁", "아침 먹", "요리"}
	cookingKeywords  = []string{"요리", "만들", "끓이", "레시피", "조리", "굽기", "구워", "볶"}
)

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Reclassify re-derives each slot's category from its task text.
// First match wins: clothing, hygiene, exercise, leisure, food.
// A leisure mention loses to an exercise mention in the same task,
// so "운동 영상 보기" stays HEALTH. Food splits on cooking intent,
// and a COOKING tag without cooking intent is demoted to MEAL.
// Slots whose task matches nothing keep a recognized category or
// fall back to GENERAL.
func Reclassify(slots []core.Slot) {
	for i := range slots {
		slots[i].Category = classify(slots[i].Task, slots[i].Category)
	}
}

func classify(task string, current core.Category) core.Category {
	switch {
	case containsAny(task, clothingKeywords):
		return core.CategoryClothing
	case containsAny(task, hygieneKeywords):
		return core.CategoryRoutine
	case containsAny(task, exerciseKeywords):
		return core.CategoryHealth
	case containsAny(task, leisureKeywords):
		return core.CategoryHobby
	case containsAny(task, foodKeywords):
		if containsAny(task, cookingKeywords) {
			return core.CategoryCooking
		}
		return core.CategoryMeal
	}
	normalized := core.ParseCategory(string(current))
	if normalized == core.CategoryCooking && !containsAny(task, cookingKeywords) {
		// over-eager tag with no cooking intent in the text
		return core.CategoryMeal
	}
	return normalized
}

// menu name extraction fallback

var menuSeparators = regexp.MustCompile(`[,/]| 또는 | 혹은 `)

var menuSuffixes = []string{"중 하나 먹기", "먹기", "먹어요", "하기", "훈련", "연습"}

// ExtractMenuNamesRuleBased splits a task sentence into food names without
// any AI help: split on common separators, strip verb suffixes, shorten
// rambling fragments to their first word, and de-duplicate.
func ExtractMenuNamesRuleBased(task string) []string {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil
	}
	var names []string
	seen := map[string]bool{}
	for _, part := range menuSeparators.Split(task, -1) {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		for _, suffix := range menuSuffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSpace(strings.TrimSuffix(name, suffix))
			}
		}
		if len([]rune(name)) > 10 && strings.Contains(name, " ") {
			name = strings.Fields(name)[0]
		}
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// AttachMenuCandidates fills in menu candidates for food slots that have
// none. The extractor gets first shot; on failure or empty result the
// rule-based split runs; if even that yields nothing the raw task text
// becomes the single candidate. Slots that already carry menus are left
// alone so coordinator edits survive re-normalization.
func AttachMenuCandidates(ctx context.Context, slots []core.Slot, extractor MenuExtractor) {
	for i := range slots {
		slot := &slots[i]
		if !slot.Category.IsFood() || len(slot.Menus) > 0 {
			continue
		}
		var names []string
		if extractor != nil {
			if got, err := extractor.ExtractMenuNames(ctx, slot.Task); err == nil {
				names = got
			}
		}
		if len(names) == 0 {
			names = ExtractMenuNamesRuleBased(slot.Task)
		}
		if len(names) == 0 && strings.TrimSpace(slot.Task) != "" {
			names = []string{slot.Task}
		}
		for _, name := range names {
			slot.Menus = append(slot.Menus, core.MenuCandidate{
				Name:  name,
				Image: DefaultMenuImage,
			})
		}
	}
}

// bracketed runs of uppercase letters, digits and underscores are
// internal category tokens that sometimes leak into generated task text
var leakedToken = regexp.MustCompile(`[\[(（【]\s*[A-Z0-9_]+\s*[\])）】]`)

// SanitizeTasks strips leaked category tokens from task text and
// collapses the whitespace left behind.
func SanitizeTasks(slots []core.Slot) {
	for i := range slots {
		slots[i].Task = SanitizeTask(slots[i].Task)
	}
}

// SanitizeTask cleans a single task string for display.
func SanitizeTask(task string) string {
	cleaned := leakedToken.ReplaceAllString(task, " ")
	return strings.Join(strings.Fields(cleaned), " ")
}
