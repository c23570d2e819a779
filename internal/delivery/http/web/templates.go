package web

import (
	"embed"
	"html/template"

	"github.com/adanyl0v/go-todo-web/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"date": models.FormatDate,
}

// LoadTemplates parses the embedded page templates. Each page is
// addressed by its file name, e.g. "home.html".
func LoadTemplates() (*template.Template, error) {
	return template.New("").
		Funcs(templateFuncs).
		ParseFS(templatesFS, "templates/*.html")
}
