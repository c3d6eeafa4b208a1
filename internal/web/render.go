package web

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/dohr-michael/todolist/internal/tasks"
)

//go:embed templates/*.html
var templateFS embed.FS

var lineBreaks = strings.NewReplacer("\r\n", "<br />\r\n", "\n", "<br />\n", "\r", "<br />\r")

var funcs = template.FuncMap{
	// nl2br keeps the stored escaping and marks each line break with <br />.
	"nl2br": func(e tasks.Escaped) template.HTML {
		return template.HTML(lineBreaks.Replace(string(e)))
	},
}

// Page is the data the index template renders.
type Page struct {
	Title   string
	Message *Message
	Tasks   []tasks.Task
	Stats   tasks.Stats
}

// Renderer writes the task page.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded page template.
func NewRenderer() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html")),
	}
}

// Render writes the page for the given store state and message.
func (r *Renderer) Render(w io.Writer, title string, store *tasks.Store, msg *Message) error {
	return r.tmpl.Execute(w, Page{
		Title:   title,
		Message: msg,
		Tasks:   store.ListTasks(),
		Stats:   store.Stats(),
	})
}
