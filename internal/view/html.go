package view

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/coachtui/woflo/internal/classify"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var categoryClasses = map[classify.Category]string{
	classify.Neutral: "bg-slate-100 text-slate-800",
	classify.Success: "bg-emerald-100 text-emerald-800",
	classify.Info:    "bg-blue-100 text-blue-800",
	classify.Warning: "bg-amber-100 text-amber-800",
	classify.Danger:  "bg-red-100 text-red-800",
	classify.Purple:  "bg-purple-100 text-purple-800",
}

func categoryClass(c classify.Category) string {
	if cls, ok := categoryClasses[c]; ok {
		return cls
	}
	return categoryClasses[classify.Neutral]
}

func sizeClass(s Size) string {
	switch s {
	case SizeSM:
		return "text-xs px-2 py-0.5"
	case SizeLG:
		return "text-sm px-3 py-1"
	default:
		return "text-sm px-2.5 py-0.5"
	}
}

func actionClass(a Action) string {
	base := "px-4 py-2 text-sm font-medium rounded-md transition-colors"
	switch {
	case a.Disabled:
		return base + " bg-slate-100 text-slate-400 cursor-not-allowed"
	case a.Primary, a.Active:
		return base + " bg-aiga-yellow text-aiga-black font-semibold hover:bg-aiga-gold"
	default:
		return base + " bg-slate-100 text-slate-700 hover:bg-slate-200"
	}
}

func percent(f float64) string {
	if f < 0 {
		f = -f
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var primitives = template.Must(template.New("view").Funcs(template.FuncMap{
	"categoryClass": categoryClass,
	"sizeClass":     sizeClass,
	"actionClass":   actionClass,
	"percent":       percent,
}).ParseFS(templateFS, "templates/*.gohtml"))

// HTML renders primitives as escaped HTML fragments.
type HTML struct{}

var _ Renderer = HTML{}

func (HTML) exec(name string, data any) string {
	var b strings.Builder
	if err := primitives.ExecuteTemplate(&b, name, data); err != nil {
		panic(fmt.Sprintf("view: template %s: %v", name, err))
	}
	return b.String()
}

func (h HTML) Badge(b Badge) string { return h.exec("badge", b) }

func (h HTML) MetricCard(m MetricCard) string { return h.exec("metric", m) }

func (h HTML) Panel(p Panel) string {
	return h.exec("panel", struct {
		Title, Description string
		Action, Body       template.HTML
		Muted              bool
	}{p.Title, p.Description, template.HTML(p.Action), template.HTML(p.Body), p.Muted})
}

func (h HTML) Empty(e Empty) string {
	return h.exec("empty", struct {
		Icon, Title, Description string
		Action                   template.HTML
	}{e.Icon, e.Title, e.Description, template.HTML(e.Action)})
}

func (h HTML) Loading(l Loading) string {
	if l.Message == "" {
		l.Message = "Loading..."
	}
	return h.exec("loading", l)
}

func (h HTML) Error(e Error) string {
	if e.Message == "" {
		e.Message = "Something went wrong. Please try again."
	}
	return h.exec("error", e)
}

func (h HTML) Notice(n Notice) string { return h.exec("notice", n) }

func (h HTML) Action(a Action) string {
	a.Method = strings.ToUpper(a.Method)
	if a.Method == "" {
		a.Method = "GET"
	}
	return h.exec("action", a)
}

func (h HTML) Form(f Form) string {
	for i := range f.Fields {
		if f.Fields[i].Type == "" {
			f.Fields[i].Type = "text"
		}
	}
	return h.exec("form", f)
}

func (h HTML) Heading(text string) string { return h.exec("heading", text) }

func (h HTML) Field(label, value string) string {
	return h.exec("field", struct{ Label, Value string }{label, value})
}

func (h HTML) Text(text string) string { return h.exec("text", text) }

func (HTML) Row(parts ...string) string {
	return `<div class="flex flex-wrap items-center gap-2">` + strings.Join(parts, "") + `</div>`
}

func (HTML) Stack(parts ...string) string {
	return `<div class="space-y-4">` + strings.Join(parts, "") + `</div>`
}

func (HTML) Grid(columns int, parts ...string) string {
	if columns < 1 {
		columns = 1
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="grid grid-cols-1 md:grid-cols-%d gap-6">`, columns)
	for _, p := range parts {
		b.WriteString(`<div>`)
		b.WriteString(p)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}
