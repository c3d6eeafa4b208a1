package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dohr-michael/todolist/internal/storage"
)

var (
	// ErrEmptyTitle is returned by AddTask when the trimmed title is empty.
	ErrEmptyTitle = errors.New("title must not be empty")
	// ErrTaskNotFound is returned when no task has the requested id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrStorage wraps failures reading or writing the backing file.
	ErrStorage = errors.New("task storage")
)

// Store holds the task list of one request cycle, backed by a single JSON file.
// It is not safe for concurrent use; callers serialize load→mutate→save.
type Store struct {
	path  string
	now   func() time.Time
	newID func() string
	write func(path string, data []byte) error
	tasks []Task
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides task id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithWriter overrides how the serialized list is written to path.
func WithWriter(write func(path string, data []byte) error) Option {
	return func(s *Store) { s.write = write }
}

// NewStore creates a Store over the file at path. Call Load before use.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:  path,
		now:   time.Now,
		newID: GenerateTaskID,
		write: storage.WriteFileAtomic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the backing file. A missing or unparseable file yields an empty
// list without error; other read failures yield an empty list and ErrStorage.
// Records without an id, or repeating an earlier id, are dropped.
func (s *Store) Load() error {
	s.tasks = nil

	data, err := storage.ReadFileContent(s.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if data == nil {
		return nil
	}

	var list []Task
	if err := json.Unmarshal(data, &list); err != nil {
		slog.Warn("ignoring unreadable task file", "path", s.path, "error", err)
		return nil
	}
	s.tasks = slices.DeleteFunc(list, seenOrEmpty())
	if dropped := len(list) - len(s.tasks); dropped > 0 {
		slog.Warn("dropped task records without a unique id", "path", s.path, "count", dropped)
	}
	return nil
}

// seenOrEmpty reports records with an empty id or an id already seen.
func seenOrEmpty() func(Task) bool {
	seen := make(map[string]bool)
	return func(t Task) bool {
		if t.ID == "" || seen[t.ID] {
			return true
		}
		seen[t.ID] = true
		return false
	}
}

// Save atomically rewrites the backing file with the full list.
// Mutating operations restore the previous list when Save fails.
func (s *Store) Save() error {
	list := s.tasks
	if list == nil {
		list = []Task{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrStorage, err)
	}

	if err := s.write(s.path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

// AddTask prepends a new task and saves. Title and description are trimmed
// and escaped before storage.
func (s *Store) AddTask(title, description string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	t := Task{
		ID:          s.uniqueID(),
		Title:       Escape(title),
		Description: Escape(strings.TrimSpace(description)),
		CreatedAt:   s.now().Format(TimeLayout),
		Completed:   false,
	}

	prev := slices.Clone(s.tasks)
	s.tasks = slices.Insert(s.tasks, 0, t)
	if err := s.Save(); err != nil {
		s.tasks = prev
		return Task{}, err
	}
	return t, nil
}

// ToggleTask flips the completed flag of the task with the given id and saves.
func (s *Store) ToggleTask(id string) (Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	prev := slices.Clone(s.tasks)
	s.tasks[i].Completed = !s.tasks[i].Completed
	t := s.tasks[i]
	if err := s.Save(); err != nil {
		s.tasks = prev
		return Task{}, err
	}
	return t, nil
}

// DeleteTask removes the task with the given id, keeping the order of the
// remaining tasks, and saves.
func (s *Store) DeleteTask(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	prev := slices.Clone(s.tasks)
	s.tasks = slices.Delete(s.tasks, i, i+1)
	if err := s.Save(); err != nil {
		s.tasks = prev
		return err
	}
	return nil
}

// ListTasks returns the current list, newest first. Callers must not modify it.
func (s *Store) ListTasks() []Task {
	return s.tasks
}

// Stats counts total and completed tasks.
func (s *Store) Stats() Stats {
	st := Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		}
	}
	return st
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

// uniqueID draws ids until one is not already in the list.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}
