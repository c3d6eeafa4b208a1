// Package tasks provides the file-backed task list behind the todo page.
package tasks

import (
	"html"
	"html/template"
	"strings"

	"github.com/google/uuid"
)

// TimeLayout is the persisted format of Task.CreatedAt (server local time).
const TimeLayout = "2006-01-02 15:04:05"

// Escaped is text that was HTML-escaped once, when it was written to the store.
// Templates must render it through HTML(); converting user input to Escaped
// any other way than Escape breaks that contract.
type Escaped string

// Escape escapes s for embedding in HTML. It does not trim.
func Escape(s string) Escaped {
	return Escaped(html.EscapeString(s))
}

// HTML returns the stored value as trusted markup.
func (e Escaped) HTML() template.HTML {
	return template.HTML(e)
}

// Plain returns the original, unescaped text (for terminal output).
func (e Escaped) Plain() string {
	return html.UnescapeString(string(e))
}

// Task is a single to-do item.
type Task struct {
	ID          string  `json:"id"`
	Title       Escaped `json:"title"`
	Description Escaped `json:"description"`
	CreatedAt   string  `json:"created_at"`
	Completed   bool    `json:"completed"`
}

// Stats summarises a task list.
type Stats struct {
	Total     int
	Completed int
}

// GenerateTaskID creates a task identifier.
func GenerateTaskID() string {
	u := uuid.New().String()
	return "task_" + strings.ReplaceAll(u[:13], "-", "")
}
