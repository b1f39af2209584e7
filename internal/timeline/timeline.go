// Package timeline decides which slot is happening now and which comes next.
// It is pure: callers pass the clock reading in, nothing here touches time.Now.
package timeline

import (
	"sort"

	"github.com/hibuddy/hibuddy/internal/core"
)

// Position is the result of locating the current moment within a day's slots.
type Position struct {
	Active *core.Slot // latest slot whose time is <= now; nil before the first slot
	Next   *core.Slot // earliest slot whose time is > now; before the first slot, the first slot itself
}

// Locate finds the active and upcoming slot for the given moment.
//
// Active is the slot with the greatest start time not after now; a slot
// stays active until the next one starts, regardless of gaps. Before the
// first slot of the day there is no active slot and Next points at the
// first slot. Ties on start time resolve to the later list entry for
// Active and the earlier one for Next, so callers get a stable answer
// for duplicate times.
func Locate(slots []core.Slot, now core.TimeOfDay) Position {
	var pos Position
	activeAt := core.TimeOfDay(-1)
	nextAt := core.TimeOfDay(24*60 + 1)
	for i := range slots {
		at := slots[i].StartTime()
		if at <= now && at >= activeAt {
			pos.Active = &slots[i]
			activeAt = at
		}
		if at > now && at < nextAt {
			pos.Next = &slots[i]
			nextAt = at
		}
	}
	if pos.Active == nil && len(slots) > 0 {
		earliest := 0
		for i := range slots {
			if slots[i].StartTime() < slots[earliest].StartTime() {
				earliest = i
			}
		}
		pos.Next = &slots[earliest]
	}
	return pos
}

// AnnotatedSlot pairs a slot with its derived status for display.
type AnnotatedSlot struct {
	core.Slot
	Status core.SlotStatus `json:"status"`
}

// Annotate labels every slot past, active or upcoming relative to now.
// At most one slot is active and it is the same one Locate reports.
func Annotate(slots []core.Slot, now core.TimeOfDay) []AnnotatedSlot {
	pos := Locate(slots, now)
	out := make([]AnnotatedSlot, len(slots))
	for i := range slots {
		st := core.StatusUpcoming
		switch {
		case pos.Active != nil && &slots[i] == pos.Active:
			st = core.StatusActive
		case slots[i].StartTime() < now:
			st = core.StatusPast
		}
		out[i] = AnnotatedSlot{Slot: slots[i], Status: st}
	}
	return out
}

// SortSlots orders slots by start time, keeping the original order for
// equal times. Documents are re-sorted on every load so hand-edited
// files still display correctly.
func SortSlots(slots []core.Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime() < slots[j].StartTime()
	})
}
