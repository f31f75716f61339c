package shell

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/dayplan/internal/history"
	"github.com/user/dayplan/internal/plan"
)

// runScript feeds a scripted session to the shell and returns everything
// it printed. Run exits on EOF, so scripts do not need a trailing exit.
func runScript(t *testing.T, store *plan.Store, log *history.SessionLog, script string) string {
	t.Helper()
	var out bytes.Buffer
	sh := New(store, log, strings.NewReader(script), &out)
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out.String()
}

// seedToday writes a planner file whose only day is today, so scripted
// commands that operate on today see tasks with known IDs.
func seedToday(t *testing.T, tasks string) (*plan.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planner.json")
	content := fmt.Sprintf("{%q: %s}", plan.DateKey(time.Now()), tasks)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	store := plan.New(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return store, path
}

func TestRunBannerAndFarewell(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "")

	for _, want := range []string{
		"=== Daily Planner ===",
		"Type 'help' for a list of commands.",
		"--- Tasks for ",
		"No tasks scheduled for today.",
		"Planner> ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "Goodbye!\n") {
		t.Errorf("output should end with farewell, got:\n%s", got)
	}
}

func TestRunExitCommand(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "exit\n")
	if n := strings.Count(got, "Goodbye!"); n != 1 {
		t.Errorf("got %d farewells, want 1:\n%s", n, got)
	}
}

func TestRunCommandsAreCaseInsensitive(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "EXIT\n")
	if !strings.Contains(got, "Goodbye!") {
		t.Errorf("uppercase exit not recognized:\n%s", got)
	}
}

func TestRunAddAndList(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "add Buy milk 14:30 2024-03-15\nlist 2024-03-15\nexit\n")

	for _, want := range []string{
		"Task added: Buy milk",
		"--- Tasks for Friday, March 15, 2024 ---",
		"14:30 - Buy milk",
		"[ ]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunAddWithoutArgs(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "add\nexit\n")
	if !strings.Contains(got, "Usage: add <description> [time] [date]") {
		t.Errorf("missing usage line:\n%s", got)
	}
}

func TestRunAddRequiresDescription(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "add 14:30\nexit\n")
	if !strings.Contains(got, "Error: task description is required") {
		t.Errorf("missing error line:\n%s", got)
	}
	if strings.Contains(got, "Task added:") {
		t.Errorf("time-only add should not create a task:\n%s", got)
	}
}

func TestRunAddInvalidDateFallsBackToToday(t *testing.T) {
	// The trailing token is consumed as a date even when it does not
	// parse, so the task lands on today.
	store := newTestStore(t)
	got := runScript(t, store, nil, "add Meeting next-week-sometime\nexit\n")

	if !strings.Contains(got, "Invalid date format. Use YYYY-MM-DD.") {
		t.Errorf("missing invalid-date line:\n%s", got)
	}
	if !strings.Contains(got, "Task added: Meeting") {
		t.Errorf("task should still be added:\n%s", got)
	}
	tasks := store.Tasks(time.Now())
	if len(tasks) != 1 || tasks[0].Description != "Meeting" {
		t.Errorf("task not stored on today: %+v", tasks)
	}
}

func TestRunCompleteToggle(t *testing.T) {
	store, _ := seedToday(t, `[{"id": 41, "description": "Call mom", "time": "", "completed": false}]`)
	got := runScript(t, store, nil, "complete 41\ncomplete 41\ncomplete 99\ncomplete abc\ncomplete\nexit\n")

	completed := strings.Index(got, "Task 'Call mom' marked as completed.")
	uncompleted := strings.Index(got, "Task 'Call mom' marked as uncompleted.")
	if completed == -1 || uncompleted == -1 {
		t.Fatalf("missing toggle messages:\n%s", got)
	}
	if completed > uncompleted {
		t.Errorf("toggle messages out of order:\n%s", got)
	}
	for _, want := range []string{
		"Task not found.",
		"Task ID must be a number.",
		"Usage: complete <task_id>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunUpdateAndTime(t *testing.T) {
	store, path := seedToday(t, `[{"id": 41, "description": "Call mom", "time": "", "completed": false}]`)
	got := runScript(t, store, nil, "update 41 Call dad soon\ntime 41 08:15\ntime 41 99:99\ntime 41 8:15\nupdate 41\ntime 41\nexit\n")

	if n := strings.Count(got, "Task updated: Call dad soon"); n != 2 {
		t.Errorf("got %d update confirmations, want 2:\n%s", n, got)
	}
	if n := strings.Count(got, "Invalid time format. Use HH:MM."); n != 2 {
		t.Errorf("got %d invalid-time lines, want 2:\n%s", n, got)
	}
	for _, want := range []string{
		"Usage: update <task_id> <new description>",
		"Usage: time <task_id> <time>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	fresh := plan.New(path)
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	tasks := fresh.Tasks(time.Now())
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks on disk, want 1", len(tasks))
	}
	if tasks[0].Description != "Call dad soon" || tasks[0].Time != "08:15" {
		t.Errorf("changes not persisted: %+v", tasks[0])
	}
}

func TestRunDelete(t *testing.T) {
	store, path := seedToday(t, `[{"id": 41, "description": "Call mom", "time": "", "completed": false}]`)
	got := runScript(t, store, nil, "delete 41\ndelete 41\ndelete\nexit\n")

	for _, want := range []string{
		"Task deleted: Call mom",
		"Task not found.",
		"Usage: delete <task_id>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	fresh := plan.New(path)
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if fresh.Len() != 0 {
		t.Errorf("deleted task still on disk, %d tasks remain", fresh.Len())
	}
}

func TestRunSurplusArgumentsRejected(t *testing.T) {
	// complete and delete take exactly one argument, time exactly two;
	// anything more prints the usage line instead of touching the task.
	tests := []struct {
		name        string
		script      string
		wantUsage   string
		confirmLine string
	}{
		{
			name:        "complete with a trailing token",
			script:      "complete 41 extra\nexit\n",
			wantUsage:   "Usage: complete <task_id>",
			confirmLine: "marked as",
		},
		{
			name:        "time with a trailing token",
			script:      "time 41 08:15 extra\nexit\n",
			wantUsage:   "Usage: time <task_id> <time>",
			confirmLine: "Task updated:",
		},
		{
			name:        "delete with a trailing token",
			script:      "delete 41 today\nexit\n",
			wantUsage:   "Usage: delete <task_id>",
			confirmLine: "Task deleted:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := seedToday(t, `[{"id": 41, "description": "Call mom", "time": "10:00", "completed": false}]`)
			got := runScript(t, store, nil, tt.script)

			if !strings.Contains(got, tt.wantUsage) {
				t.Errorf("missing usage line %q:\n%s", tt.wantUsage, got)
			}
			if strings.Contains(got, tt.confirmLine) {
				t.Errorf("surplus arguments should not reach the store:\n%s", got)
			}

			tasks := store.Tasks(time.Now())
			if len(tasks) != 1 {
				t.Fatalf("task count: got %d, want 1", len(tasks))
			}
			if tasks[0].Completed || tasks[0].Time != "10:00" {
				t.Errorf("task changed: %+v", tasks[0])
			}
		})
	}
}

func TestRunListInvalidDate(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "list not-a-date-at-all\nexit\n")

	if !strings.Contains(got, "Invalid date format. Use YYYY-MM-DD.") {
		t.Errorf("missing invalid-date line:\n%s", got)
	}
	today := "--- Tasks for " + time.Now().Format(headerLayout) + " ---"
	if !strings.Contains(got, today) {
		t.Errorf("list should fall back to today (%s):\n%s", today, got)
	}
}

func TestRunWeekExplicitStart(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "week 2024-03-13\nexit\n")

	if !strings.Contains(got, "--- Weekly Schedule ---") {
		t.Errorf("missing week banner:\n%s", got)
	}
	// The given date starts the week as-is, no snapping to Monday.
	banner := strings.Index(got, "--- Weekly Schedule ---")
	first := strings.Index(got[banner:], "--- Tasks for ")
	if first == -1 {
		t.Fatalf("no day sections:\n%s", got)
	}
	rest := got[banner+first:]
	if !strings.HasPrefix(rest, "--- Tasks for Wednesday, March 13, 2024 ---") {
		t.Errorf("week should start on the given date:\n%s", got)
	}
	if !strings.Contains(got, "Tuesday, March 19, 2024") {
		t.Errorf("week should span seven days:\n%s", got)
	}
}

func TestRunWeekDefaultsToMonday(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "week\nexit\n")

	monday := "--- Tasks for " + plan.WeekStart(time.Now()).Format(headerLayout) + " ---"
	if !strings.Contains(got, monday) {
		t.Errorf("week without args should start on Monday (%s):\n%s", monday, got)
	}
}

func TestRunWeekInvalidStart(t *testing.T) {
	// An unparseable start date falls back to today, not to Monday.
	got := runScript(t, newTestStore(t), nil, "week 2024-99-99\nexit\n")

	if !strings.Contains(got, "Invalid date format. Use YYYY-MM-DD.") {
		t.Errorf("missing invalid-date line:\n%s", got)
	}
	banner := strings.Index(got, "--- Weekly Schedule ---")
	if banner == -1 {
		t.Fatalf("missing week banner:\n%s", got)
	}
	first := strings.Index(got[banner:], "--- Tasks for ")
	if first == -1 {
		t.Fatalf("no day sections:\n%s", got)
	}
	today := "--- Tasks for " + time.Now().Format(headerLayout) + " ---"
	if !strings.HasPrefix(got[banner+first:], today) {
		t.Errorf("week should start on today after a bad date:\n%s", got)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "frobnicate the thing\nexit\n")

	if !strings.Contains(got, "Unknown command: frobnicate") {
		t.Errorf("missing unknown-command line:\n%s", got)
	}
	if !strings.Contains(got, "Type 'help' for available commands.") {
		t.Errorf("missing help hint:\n%s", got)
	}
}

func TestRunHelp(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "help\nexit\n")

	for _, want := range []string{
		"Daily Planner Commands:",
		"add <description> [time] [date]",
		"Dates should be in format YYYY-MM-DD",
		"Times should be in 24-hour format HH:MM",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("help missing %q:\n%s", want, got)
		}
	}
}

func TestRunBlankLinesAreIgnored(t *testing.T) {
	got := runScript(t, newTestStore(t), nil, "\n   \nexit\n")

	if strings.Contains(got, "Unknown command") {
		t.Errorf("blank line treated as a command:\n%s", got)
	}
	// One prompt per loop turn: two blanks plus the exit.
	if n := strings.Count(got, "Planner> "); n != 3 {
		t.Errorf("got %d prompts, want 3:\n%s", n, got)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	log, err := history.NewSessionLog(dir)
	if err != nil {
		t.Fatalf("NewSessionLog failed: %v", err)
	}

	store := newTestStore(t)
	runScript(t, store, log, "add Buy milk 14:30\nexit\n")
	if err := log.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	path, err := history.FindLatest(dir)
	if err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []history.Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e history.Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("bad history line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d history entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Op != "add" || e.Detail != "Buy milk" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Date != plan.DateKey(time.Now()) {
		t.Errorf("entry date: got %q, want today", e.Date)
	}
	if e.TaskID == 0 {
		t.Errorf("entry should carry the task ID: %+v", e)
	}
}

func TestRunContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	sh := New(newTestStore(t), nil, pr, &out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sh.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if !strings.Contains(out.String(), "Exiting planner...") {
		t.Errorf("missing interrupt farewell:\n%s", out.String())
	}
}
