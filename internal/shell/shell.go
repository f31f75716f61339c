// Package shell implements the interactive planner prompt.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/user/dayplan/internal/history"
	"github.com/user/dayplan/internal/plan"
)

// Shell runs the interactive command loop against a single store. Command
// output goes to out; the history log may be nil.
type Shell struct {
	store *plan.Store
	log   *history.SessionLog
	in    io.Reader
	out   io.Writer
}

// New returns a shell reading commands from in and printing to out.
func New(store *plan.Store, log *history.SessionLog, in io.Reader, out io.Writer) *Shell {
	return &Shell{store: store, log: log, in: in, out: out}
}

// Run prints the banner and today's tasks, then reads commands until exit,
// end of input, or context cancellation. Command failures are reported and
// the loop continues; only the three end conditions stop it.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "=== Daily Planner ===")
	fmt.Fprintln(s.out, "Type 'help' for a list of commands.")
	displayTasks(s.out, s.store, time.Time{})

	lines := make(chan string)
	go func() {
		// The reader goroutine lives for the process; on cancellation the
		// pending send is abandoned along with it.
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		fmt.Fprint(s.out, "\nPlanner> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out, "\nExiting planner...")
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out, "Goodbye!")
				return nil
			}
			if s.dispatch(strings.TrimSpace(line)) {
				return nil
			}
		}
	}
}

// dispatch runs one command line and reports whether the session is over.
func (s *Shell) dispatch(line string) bool {
	if line == "" {
		return false
	}

	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch command {
	case "exit":
		fmt.Fprintln(s.out, "Goodbye!")
		return true
	case "help":
		s.printHelp()
	case "add":
		err = s.cmdAdd(args)
	case "list":
		err = s.cmdList(args)
	case "week":
		err = s.cmdWeek(args)
	case "complete":
		err = s.cmdComplete(args)
	case "update":
		err = s.cmdUpdate(args)
	case "time":
		err = s.cmdTime(args)
	case "delete":
		err = s.cmdDelete(args)
	default:
		fmt.Fprintf(s.out, "Unknown command: %s\n", command)
		fmt.Fprintln(s.out, "Type 'help' for available commands.")
	}
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return false
}

func (s *Shell) cmdAdd(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: add <description> [time] [date]")
		return nil
	}

	tokens, dateText := splitTrailingDate(args)
	var date time.Time
	if dateText != "" {
		d, err := plan.ParseDate(dateText)
		if err != nil {
			// The token is already stripped; the task lands on today.
			fmt.Fprintln(s.out, "Invalid date format. Use YYYY-MM-DD.")
		} else {
			date = d
		}
	}
	tokens, timeOfDay := extractTime(tokens)

	task, err := s.store.AddTask(strings.Join(tokens, " "), timeOfDay, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Task added: %s\n", task.Description)
	s.record("add", date, task)
	return nil
}

func (s *Shell) cmdList(args []string) error {
	var date time.Time
	if len(args) > 0 {
		date = s.parseDateArg(args[0])
	}
	displayTasks(s.out, s.store, date)
	return nil
}

func (s *Shell) cmdWeek(args []string) error {
	var start time.Time
	if len(args) > 0 {
		// A bad explicit start falls back to today, not to Monday.
		start = s.parseDateArg(args[0])
	} else {
		start = plan.WeekStart(time.Now())
	}
	displayWeek(s.out, s.store, start)
	return nil
}

func (s *Shell) cmdComplete(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: complete <task_id>")
		return nil
	}
	id, ok := s.parseID(args[0])
	if !ok {
		return nil
	}

	task, found, err := s.store.CompleteTask(id, time.Time{})
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(s.out, "Task not found.")
		return nil
	}
	status := "uncompleted"
	if task.Completed {
		status = "completed"
	}
	fmt.Fprintf(s.out, "Task '%s' marked as %s.\n", task.Description, status)
	s.record("complete", time.Time{}, task)
	return nil
}

func (s *Shell) cmdUpdate(args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: update <task_id> <new description>")
		return nil
	}
	id, ok := s.parseID(args[0])
	if !ok {
		return nil
	}
	description := strings.Join(args[1:], " ")

	task, found, err := s.store.UpdateTask(id, &description, nil, time.Time{})
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(s.out, "Task not found.")
		return nil
	}
	fmt.Fprintf(s.out, "Task updated: %s\n", task.Description)
	s.record("update", time.Time{}, task)
	return nil
}

func (s *Shell) cmdTime(args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: time <task_id> <time>")
		return nil
	}
	id, ok := s.parseID(args[0])
	if !ok {
		return nil
	}
	timeOfDay := args[1]
	if !plan.ValidTime(timeOfDay) {
		fmt.Fprintln(s.out, "Invalid time format. Use HH:MM.")
		return nil
	}

	task, found, err := s.store.UpdateTask(id, nil, &timeOfDay, time.Time{})
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(s.out, "Task not found.")
		return nil
	}
	fmt.Fprintf(s.out, "Task updated: %s\n", task.Description)
	s.record("time", time.Time{}, task)
	return nil
}

func (s *Shell) cmdDelete(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: delete <task_id>")
		return nil
	}
	id, ok := s.parseID(args[0])
	if !ok {
		return nil
	}

	task, found, err := s.store.DeleteTask(id, time.Time{})
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(s.out, "Task not found.")
		return nil
	}
	fmt.Fprintf(s.out, "Task deleted: %s\n", task.Description)
	s.record("delete", time.Time{}, task)
	return nil
}

// parseID parses a task id argument, reporting bad input to the user.
func (s *Shell) parseID(text string) (int, bool) {
	id, err := strconv.Atoi(text)
	if err != nil {
		fmt.Fprintln(s.out, "Task ID must be a number.")
		return 0, false
	}
	return id, true
}

// parseDateArg parses a date argument, falling back to today with a message.
// A bad date never aborts the command.
func (s *Shell) parseDateArg(text string) time.Time {
	d, err := plan.ParseDate(text)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid date format. Use YYYY-MM-DD.")
		return time.Now()
	}
	return d
}

// record writes a mutation to the session history log.
func (s *Shell) record(op string, date time.Time, task *plan.Task) {
	if date.IsZero() {
		date = time.Now()
	}
	if err := s.log.Record(op, plan.DateKey(date), task.ID, task.Description); err != nil {
		fmt.Fprintf(s.out, "Warning: %v\n", err)
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, "\nDaily Planner Commands:")
	fmt.Fprintln(s.out, "  add <description> [time] [date]    Add a new task")
	fmt.Fprintln(s.out, "  list [date]                        List tasks for a date (default: today)")
	fmt.Fprintln(s.out, "  week [start_date]                  Display weekly schedule")
	fmt.Fprintln(s.out, "  complete <task_id>                 Mark a task as completed/uncompleted")
	fmt.Fprintln(s.out, "  update <task_id> <description>     Update task description")
	fmt.Fprintln(s.out, "  time <task_id> <time>              Update task time (format: HH:MM)")
	fmt.Fprintln(s.out, "  delete <task_id>                   Delete a task")
	fmt.Fprintln(s.out, "  help                               Show this help message")
	fmt.Fprintln(s.out, "  exit                               Exit the planner")
	fmt.Fprintln(s.out, "\nDates should be in format YYYY-MM-DD")
	fmt.Fprintln(s.out, "Times should be in 24-hour format HH:MM")
}
