package web

import (
	"errors"
	"log/slog"
	"net/url"

	"github.com/dohr-michael/todolist/internal/tasks"
)

// Form field names posted by the page.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldTaskID      = "task_id"

	markerAdd    = "add_task"
	markerToggle = "toggle_task"
	markerDelete = "delete_task"
)

// MessageKind styles the status banner.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Message is a status notification that lives for a single request.
type Message struct {
	Kind MessageKind
	Text string
}

// AlertClass returns the Bootstrap alert modifier for the message kind.
func (m Message) AlertClass() string {
	if m.Kind == MessageError {
		return "danger"
	}
	return string(m.Kind)
}

var (
	msgAdded       = &Message{Kind: MessageSuccess, Text: "task added"}
	msgDeleted     = &Message{Kind: MessageSuccess, Text: "task deleted"}
	msgEmptyTitle  = &Message{Kind: MessageError, Text: "title must not be empty"}
	msgNotFound    = &Message{Kind: MessageError, Text: "task not found"}
	msgLoadFailed  = &Message{Kind: MessageError, Text: "could not load tasks"}
	msgStoreFailed = &Message{Kind: MessageError, Text: "could not save tasks"}
)

// FormHandler applies a posted form to a loaded task store.
type FormHandler struct {
	// ReportMissing surfaces toggle/delete against an unknown id as an error.
	ReportMissing bool
}

// Handle runs every action whose marker field is present in form, in the
// order add, toggle, delete, and returns the last message produced (or nil).
// Outcomes are logged to log.
func (h FormHandler) Handle(log *slog.Logger, store *tasks.Store, form url.Values) *Message {
	var msg *Message

	if form.Has(markerAdd) {
		msg = pick(msg, h.add(log, store, form.Get(fieldTitle), form.Get(fieldDescription)))
	}
	if form.Has(markerToggle) {
		msg = pick(msg, h.toggle(log, store, form.Get(fieldTaskID)))
	}
	if form.Has(markerDelete) {
		msg = pick(msg, h.delete(log, store, form.Get(fieldTaskID)))
	}
	return msg
}

func (h FormHandler) add(log *slog.Logger, store *tasks.Store, title, description string) *Message {
	t, err := store.AddTask(title, description)
	switch {
	case err == nil:
		log.Info("task added", "id", t.ID)
		return msgAdded
	case errors.Is(err, tasks.ErrEmptyTitle):
		return msgEmptyTitle
	default:
		log.Error("add task", "error", err)
		return msgStoreFailed
	}
}

func (h FormHandler) toggle(log *slog.Logger, store *tasks.Store, id string) *Message {
	t, err := store.ToggleTask(id)
	switch {
	case err == nil:
		log.Info("task toggled", "id", t.ID, "completed", t.Completed)
		return nil
	case errors.Is(err, tasks.ErrTaskNotFound):
		return h.missing(log, id)
	default:
		log.Error("toggle task", "id", id, "error", err)
		return msgStoreFailed
	}
}

func (h FormHandler) delete(log *slog.Logger, store *tasks.Store, id string) *Message {
	err := store.DeleteTask(id)
	switch {
	case err == nil:
		log.Info("task deleted", "id", id)
		return msgDeleted
	case errors.Is(err, tasks.ErrTaskNotFound):
		return h.missing(log, id)
	default:
		log.Error("delete task", "id", id, "error", err)
		return msgStoreFailed
	}
}

func (h FormHandler) missing(log *slog.Logger, id string) *Message {
	log.Debug("task not found", "id", id)
	if h.ReportMissing {
		return msgNotFound
	}
	return nil
}

// pick keeps the previous message when an action produced none.
func pick(prev, next *Message) *Message {
	if next != nil {
		return next
	}
	return prev
}
