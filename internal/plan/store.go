package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store holds tasks grouped by calendar day and persists every mutation to
// a single JSON file. Within a day, tasks keep the order they were added in
// (or the order a display pass last left them in).
type Store struct {
	path   string
	tasks  map[string][]*Task
	nextID int
}

// New returns an empty store bound to a data file path. Task IDs are
// timestamp-seeded and strictly increasing, so IDs created by one store
// instance never repeat within it.
func New(path string) *Store {
	return &Store{
		path:   path,
		tasks:  make(map[string][]*Task),
		nextID: int(time.Now().Unix()),
	}
}

// key resolves a date argument to a date key. The zero time means today.
func (s *Store) key(date time.Time) string {
	if date.IsZero() {
		date = time.Now()
	}
	return DateKey(date)
}

// allocID returns the next task ID.
func (s *Store) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

// Load reads the data file into the store, replacing any previous contents.
// A missing file leaves the store empty and is not an error. A file that
// cannot be read or parsed also leaves the store empty; the returned error
// describes what was discarded so the caller can warn, but the store stays
// usable either way.
func (s *Store) Load() error {
	s.tasks = make(map[string][]*Task)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read planner file: %w", err)
	}

	var raw map[string][]taskRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse planner file: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("parse planner file: not a JSON object")
	}

	loaded := make(map[string][]*Task, len(raw))
	var unnumbered []*Task
	maxID := 0
	for key, recs := range raw {
		list := make([]*Task, 0, len(recs))
		for i, rec := range recs {
			task, err := rec.task()
			if err != nil {
				return fmt.Errorf("task %d on %s: %w", i+1, key, err)
			}
			if rec.ID == nil {
				unnumbered = append(unnumbered, &task)
			} else if task.ID > maxID {
				maxID = task.ID
			}
			list = append(list, &task)
		}
		loaded[key] = list
	}

	// New IDs must not collide with anything already on disk.
	if maxID >= s.nextID {
		s.nextID = maxID + 1
	}
	for _, task := range unnumbered {
		task.ID = s.allocID()
	}

	s.tasks = loaded
	return nil
}

// Save writes the full store to the data file with 2-space indentation.
// The parent directory is created if needed, so a fresh install can save
// straight into the default state directory.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal planner data: %w", err)
	}

	// Add trailing newline
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create planner directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write planner file: %w", err)
	}

	return nil
}

// AddTask creates a task on the given day (the zero time means today) and
// persists the store. The description must be non-empty after trimming;
// timeOfDay may be empty for an unscheduled task.
func (s *Store) AddTask(description, timeOfDay string, date time.Time) (*Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("task description is required")
	}

	task := &Task{
		ID:          s.allocID(),
		Description: description,
		Time:        timeOfDay,
	}
	key := s.key(date)
	s.tasks[key] = append(s.tasks[key], task)

	if err := s.Save(); err != nil {
		return task, err
	}
	return task, nil
}

// Tasks returns the live task list for a day (the zero time means today).
// The slice is the store's own backing list: callers that reorder it
// reorder the stored day. Days with no tasks yield an empty slice and no
// new map entry.
func (s *Store) Tasks(date time.Time) []*Task {
	return s.tasks[s.key(date)]
}

// find locates a task by ID on a day. It returns the task's position and
// pointer, or (-1, nil) when the ID is not present on that day.
func (s *Store) find(key string, id int) (int, *Task) {
	for i, task := range s.tasks[key] {
		if task.ID == id {
			return i, task
		}
	}
	return -1, nil
}

// CompleteTask toggles a task's completion state and persists the store.
// The bool reports whether the ID was found on that day.
func (s *Store) CompleteTask(id int, date time.Time) (*Task, bool, error) {
	_, task := s.find(s.key(date), id)
	if task == nil {
		return nil, false, nil
	}
	task.Completed = !task.Completed
	if err := s.Save(); err != nil {
		return task, true, err
	}
	return task, true, nil
}

// UpdateTask rewrites a task's description and/or time of day and persists
// the store. A nil pointer leaves that field alone. A non-nil empty
// description also leaves the description alone, while a non-nil empty
// time clears the schedule; the two fields are deliberately not symmetric.
func (s *Store) UpdateTask(id int, description, timeOfDay *string, date time.Time) (*Task, bool, error) {
	_, task := s.find(s.key(date), id)
	if task == nil {
		return nil, false, nil
	}
	if description != nil && *description != "" {
		task.Description = *description
	}
	if timeOfDay != nil {
		task.Time = *timeOfDay
	}
	if err := s.Save(); err != nil {
		return task, true, err
	}
	return task, true, nil
}

// DeleteTask removes a task from its day, keeping the remaining order, and
// persists the store. The bool reports whether the ID was found.
func (s *Store) DeleteTask(id int, date time.Time) (*Task, bool, error) {
	key := s.key(date)
	i, task := s.find(key, id)
	if task == nil {
		return nil, false, nil
	}
	s.tasks[key] = append(s.tasks[key][:i], s.tasks[key][i+1:]...)
	if err := s.Save(); err != nil {
		return task, true, err
	}
	return task, true, nil
}

// Dates returns all date keys in the store in chronological order.
func (s *Store) Dates() []string {
	keys := make([]string, 0, len(s.tasks))
	for key := range s.tasks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the total number of tasks across all days.
func (s *Store) Len() int {
	n := 0
	for _, list := range s.tasks {
		n += len(list)
	}
	return n
}
