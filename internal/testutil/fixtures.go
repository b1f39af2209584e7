package testutil

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hibuddy/hibuddy/internal/core"
)

// RandomID returns a fresh uuid string.
func RandomID() string {
	return uuid.NewString()
}

// ScheduleFixture returns a plausible full-day document.
func ScheduleFixture(date string) core.ScheduleDocument {
	return core.ScheduleDocument{
		Date: date,
		Slots: []core.Slot{
			{ID: RandomID(), Time: "07:00", Category: core.CategoryMorningBriefing, Task: "일어나서 세수하기"},
			{
				ID:       RandomID(),
				Time:     "12:00",
				Category: core.CategoryMeal,
				Task:     "점심 먹기",
				GuideScript: []string{
					"손을 씻어요.",
					"천천히 꼭꼭 씹어서 먹어요.",
				},
				Menus: []core.MenuCandidate{{Name: "라면"}},
			},
			{ID: RandomID(), Time: "15:30", Category: core.CategoryHealth, Task: "산책하기"},
			{ID: RandomID(), Time: "21:00", Category: core.CategoryNightWrapup, Task: "하루 돌아보기"},
		},
	}
}

// Slots builds n slots spaced an hour apart starting at 08:00.
func Slots(n int) []core.Slot {
	slots := make([]core.Slot, 0, n)
	for i := 0; i < n; i++ {
		slots = append(slots, core.Slot{
			ID:       RandomID(),
			Time:     fmt.Sprintf("%02d:00", 8+i),
			Category: core.CategoryGeneral,
			Task:     fmt.Sprintf("활동 %d", i+1),
		})
	}
	return slots
}
