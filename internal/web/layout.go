package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/page"
	"github.com/coachtui/woflo/internal/view"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var layout = template.Must(template.ParseFS(templateFS, "templates/*.gohtml"))

type navItem struct {
	Label  string
	Href   string
	Active bool
}

var navigation = []navItem{
	{Label: "Overview", Href: page.PathOverview},
	{Label: "Schedule", Href: page.PathSchedule},
	{Label: "Work Orders", Href: page.PathWorkOrders},
	{Label: "Tasks", Href: page.PathTasks},
	{Label: "Jobs", Href: page.PathJobs},
}

// docView carries page.View fields already rendered by view.HTML.
type docView struct {
	Title       string
	Description string
}

type document struct {
	View           docView
	Actions        template.HTML
	Body           template.HTML
	Notice         template.HTML
	Nav            []navItem
	Current        string
	RefreshHref    string
	CredentialPath string
	HasCredential  bool
	// Reload is the meta refresh value, set while a fetch is still running.
	Reload string
}

// withoutRefresh is u's path and query minus the refresh flag, so a
// reload re-attaches to the running fetch instead of starting another.
func withoutRefresh(u *url.URL) string {
	q := u.Query()
	q.Del(page.RefreshParam)
	if len(q) == 0 {
		return u.Path
	}
	return u.Path + "?" + q.Encode()
}

type renderOpts struct {
	section string
	status  int
	loading bool
}

// render writes v inside the document layout. The pending notice of the
// session, if any, is shown and consumed.
func (s *Server) render(w http.ResponseWriter, r *http.Request, sess *session, v page.View, opts renderOpts) {
	doc := document{
		View:           docView{Title: v.Title, Description: v.Description},
		Actions:        template.HTML(v.Actions),
		Body:           template.HTML(v.Body),
		Current:        withoutRefresh(r.URL),
		RefreshHref:    page.RetryHref(r.URL.Path, r.URL.Query()),
		CredentialPath: page.PathCredential,
		HasCredential:  sess.apiClient().HasCredential(),
	}
	for _, item := range navigation {
		item.Active = item.Href == opts.section
		doc.Nav = append(doc.Nav, item)
	}
	if n := sess.takeNotice(); n != nil {
		doc.Notice = template.HTML(s.html.Notice(view.Notice{
			Category:    n.Category,
			Message:     n.Message,
			DismissHref: page.PathDismiss + "?" + url.Values{"next": {doc.Current}}.Encode(),
		}))
	}
	if opts.loading {
		doc.Reload = "1;url=" + withoutRefresh(r.URL)
	}

	var buf bytes.Buffer
	if err := layout.ExecuteTemplate(&buf, "document", doc); err != nil {
		s.log.Error("render document", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	status := opts.status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Standalone renders v as a complete document with no session: no notice,
// no credential state and links relative to the dashboard root.
func Standalone(v page.View, section string) ([]byte, error) {
	doc := document{
		View:           docView{Title: v.Title, Description: v.Description},
		Actions:        template.HTML(v.Actions),
		Body:           template.HTML(v.Body),
		Current:        section,
		RefreshHref:    section,
		CredentialPath: page.PathCredential,
	}
	for _, item := range navigation {
		item.Active = item.Href == section
		doc.Nav = append(doc.Nav, item)
	}
	var buf bytes.Buffer
	if err := layout.ExecuteTemplate(&buf, "document", doc); err != nil {
		return nil, errors.Wrap(err, "render document")
	}
	return buf.Bytes(), nil
}
