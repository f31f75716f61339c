package plan

import "sort"

// unscheduledKey places tasks without a time after every scheduled task.
// A task scheduled at exactly 23:59 ties with them and keeps its spot.
const unscheduledKey = "23:59"

// SortByTime orders a day's tasks by time of day, earliest first. The
// sort is stable, so tasks sharing a time keep their relative order.
func SortByTime(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return sortKey(tasks[i]) < sortKey(tasks[j])
	})
}

func sortKey(t *Task) string {
	if t.Scheduled() {
		return t.Time
	}
	return unscheduledKey
}
