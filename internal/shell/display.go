package shell

import (
	"fmt"
	"io"
	"time"

	"github.com/user/dayplan/internal/plan"
)

// headerLayout renders dates for day headers, e.g. "Friday, March 15, 2024".
const headerLayout = "Monday, January 02, 2006"

// displayTasks prints one day's tasks. The zero date means today. Sorting
// happens on the store's own day list, so the order shown is also the order
// the next save persists.
func displayTasks(w io.Writer, store *plan.Store, date time.Time) {
	if date.IsZero() {
		date = time.Now()
	}
	tasks := store.Tasks(date)

	fmt.Fprintf(w, "\n--- Tasks for %s ---\n", date.Format(headerLayout))
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks scheduled for today.")
		return
	}

	plan.SortByTime(tasks)
	for i, task := range tasks {
		status := " "
		if task.Completed {
			status = "✓"
		}
		timeStr := ""
		if task.Scheduled() {
			timeStr = task.Time + " - "
		}
		fmt.Fprintf(w, "%d. [%s] %s%s (ID: %d)\n", i+1, status, timeStr, task.Description, task.ID)
	}
}

// displayWeek prints seven consecutive days starting from the given date.
func displayWeek(w io.Writer, store *plan.Store, start time.Time) {
	fmt.Fprintln(w, "\n--- Weekly Schedule ---")
	for i := 0; i < 7; i++ {
		displayTasks(w, store, start.AddDate(0, 0, i))
		fmt.Fprintln(w)
	}
}
