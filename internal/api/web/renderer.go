// Package web renders the console's HTML pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/testdeck/console/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Render.
const (
	PageLogin    = "login"
	PageChecking = "checking"
	PageHome     = "home"
	PageSuites   = "suites"
	PageSuite    = "suite"
	PageNotFound = "not_found"
	PageError    = "error"
)

var pages = []string{PageLogin, PageChecking, PageHome, PageSuites, PageSuite, PageNotFound, PageError}

// Renderer implements echo.Renderer over a set of page templates that share
// the layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("2006-01-02")
	},
	"statusLabel": func(s domain.SuiteStatus) string { return s.Label() },
	"statusClass": func(s domain.SuiteStatus) string { return strings.ToLower(string(s)) },
	"progress":    func(s domain.TestSuite) string { return fmt.Sprintf("%.0f", s.ClampedProgress()) },
	"canCreate": func(u *domain.AuthUser) bool {
		return u != nil && domain.Can(u.Role, domain.PermCreateTestSuite)
	},
	"add": func(a, b int) int { return a + b },
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render satisfies echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}
