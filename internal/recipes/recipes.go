// Package recipes holds the built-in catalog of simple meals and
// exercise routines. The catalog is deliberately small and hand-curated:
// every entry has short, concrete steps a user can follow along with.
package recipes

import (
	"sort"
	"strings"

	"github.com/hibuddy/hibuddy/internal/core"
)

// Recipe is one meal the system knows how to guide.
type Recipe struct {
	Name  string   `json:"name"`
	Steps []string `json:"steps"`
}

var catalog = map[string]Recipe{
	"라면": {
		Name: "라면",
		Steps: []string{
			"냄비에 물을 받아 불 위에 올려요.",
			"물이 끓으면 면과 수프를 넣어요.",
			"4분 정도 기다렸다가 불을 꺼요.",
			"그릇에 옮겨 담고 조심해서 먹어요.",
		},
	},
	"카레": {
		Name: "카레",
		Steps: []string{
			"야채를 한 입 크기로 잘라요.",
			"냄비에 야채를 넣고 볶아요.",
			"물과 카레 가루를 넣고 끓여요.",
			"밥 위에 얹어서 먹어요.",
		},
	},
	"김밥": {
		Name: "김밥",
		Steps: []string{
			"김 위에 밥을 얇게 펴요.",
			"좋아하는 재료를 가운데 올려요.",
			"김을 돌돌 말아요.",
			"먹기 좋게 잘라서 접시에 담아요.",
		},
	},
	"샌드위치": {
		Name: "샌드위치",
		Steps: []string{
			"빵 두 장을 준비해요.",
			"빵 위에 잼이나 재료를 올려요.",
			"다른 빵으로 덮어요.",
			"반으로 잘라서 먹어요.",
		},
	},
	"볶음밥": {
		Name: "볶음밥",
		Steps: []string{
			"팬에 기름을 조금 둘러요.",
			"밥과 야채를 넣고 볶아요.",
			"간장을 한 숟갈 넣고 섞어요.",
			"접시에 담아서 먹어요.",
		},
	},
}

// Get returns the recipe for the given name, matching loosely so
// "라면 먹기" still finds 라면.
func Get(name string) (Recipe, bool) {
	name = strings.TrimSpace(name)
	if r, ok := catalog[name]; ok {
		return r, true
	}
	for key, r := range catalog {
		if strings.Contains(name, key) {
			return r, true
		}
	}
	return Recipe{}, false
}

// AllNames lists every known recipe name, sorted for stable display.
func AllNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SuggestFromText returns catalog names mentioned in a task sentence.
// This is the offline complement to the AI menu extractor.
func SuggestFromText(task string) []string {
	var found []string
	for _, name := range AllNames() {
		if strings.Contains(task, name) {
			found = append(found, name)
		}
	}
	return found
}

// HealthRoutine is one exercise variant with follow-along steps.
type HealthRoutine struct {
	Mode  core.HealthMode `json:"mode"`
	Steps []string        `json:"steps"`
}

var healthRoutines = []HealthRoutine{
	{
		Mode: core.HealthMode{ID: "sit", Name: "앉아서 하는 운동"},
		Steps: []string{
			"의자에 허리를 펴고 앉아요.",
			"팔을 위로 쭉 뻗어요.",
			"고개를 천천히 좌우로 돌려요.",
			"열 번씩 반복해요.",
		},
	},
	{
		Mode: core.HealthMode{ID: "stand", Name: "서서 하는 운동"},
		Steps: []string{
			"두 발을 어깨 너비로 벌리고 서요.",
			"무릎을 살짝 굽혔다 펴요.",
			"팔을 크게 돌려요.",
			"열 번씩 반복해요.",
		},
	},
	{
		Mode: core.HealthMode{ID: "walk", Name: "걷기 운동"},
		Steps: []string{
			"편한 신발을 신어요.",
			"바른 자세로 천천히 걸어요.",
			"10분 동안 걷고 잠시 쉬어요.",
		},
	},
}

// HealthModes lists the exercise variants a coordinator can allow.
func HealthModes() []core.HealthMode {
	modes := make([]core.HealthMode, len(healthRoutines))
	for i, r := range healthRoutines {
		modes[i] = r.Mode
	}
	return modes
}

// GetHealthRoutine returns the routine for a mode id.
func GetHealthRoutine(modeID string) (HealthRoutine, bool) {
	for _, r := range healthRoutines {
		if r.Mode.ID == modeID {
			return r, true
		}
	}
	return HealthRoutine{}, false
}
