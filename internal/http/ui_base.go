package httpx

import (
	"bytes"
	"html"
	"log/slog"
	"net/http"
	"sync"

	domainauth "github.com/harmonia-academy/harmonia-web/internal/domain/auth"
	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
	"github.com/harmonia-academy/harmonia-web/internal/http/ui/viewmodel"
	"github.com/harmonia-academy/harmonia-web/internal/mutation"
	"github.com/harmonia-academy/harmonia-web/internal/observability/statsd"
)

const errMsgFixBelow = "Please fix the errors below."

// Minimum roles of the UI areas.
const (
	roleViewLists    = domainauth.RoleTeacher
	roleViewPayments = domainauth.RoleStaff
	roleManage       = domainauth.RoleStaff
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T            *TemplateRenderer
	Classes      ClassesService
	Students     StudentsService
	Transactions TransactionsService
	// Dialogs keeps open mutation result dialogs between submit and dismiss.
	Dialogs *mutation.Registry
	// MaxUploadBytes bounds student import sheets.
	MaxUploadBytes int64
	IsDev          bool // Development mode flag for enhanced error reporting
	Logger         *slog.Logger
	// Metrics receives mutation outcomes (optional).
	Metrics statsd.Sink

	initOnce sync.Once
	lists    *listSequencers
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *UIHandlers) init() {
	h.initOnce.Do(func() {
		if h.lists == nil {
			h.lists = newListSequencers(0)
		}
		if h.Dialogs == nil {
			h.Dialogs = mutation.NewRegistry(0)
		}
	})
}

func (h *UIHandlers) sequencers() *listSequencers {
	h.init()
	return h.lists
}

func (h *UIHandlers) dialogs() *mutation.Registry {
	h.init()
	return h.Dialogs
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

type navEntry struct {
	item viewmodel.NavItem
	role domainauth.Role
}

//nolint:gochecknoglobals // static navigation table
var navigation = []navEntry{
	{viewmodel.NavItem{Page: PageDashboard, Label: "Dashboard", Href: "/"}, domainauth.RoleGuest},
	{viewmodel.NavItem{Page: PageClasses, Label: "Classes", Href: "/classes"}, roleViewLists},
	{viewmodel.NavItem{Page: PageStudents, Label: "Students", Href: "/students"}, roleViewLists},
	{viewmodel.NavItem{Page: PageTransactions, Label: "Tuition", Href: "/transactions"}, roleViewPayments},
}

// buildLayout constructs shared layout metadata from the request/session context.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
	}
	if layout.Title == "" {
		layout.Title = AppName
	} else {
		layout.Title += " - " + AppName
	}

	session := GetSessionFromContext(r.Context())
	if session == nil {
		return layout
	}
	layout.IsAuthenticated = true
	layout.CanManage = session.Role.AtLeast(roleManage)
	layout.User = &viewmodel.User{
		Name:  session.DisplayName(),
		Email: session.Email,
		Role:  string(session.Role),
	}
	for _, n := range navigation {
		if session.Role.AtLeast(n.role) {
			layout.Nav = append(layout.Nav, n.item)
		}
	}
	return layout
}

// basePageData constructs the common page data map with user context.
// Errors starts as a typed nil map because templates index it unconditionally.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	layout := buildLayout(r, meta)
	return map[string]any{
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"CSRFToken":       layout.CSRFToken,
		"IsAuthenticated": layout.IsAuthenticated,
		"CanManage":       layout.CanManage,
		"Nav":             layout.Nav,
		"User":            layout.User,
		"Errors":          map[string]string(nil),
	}
}

// renderPage renders data as a full page, or as the content area plus
// out-of-band title updates when htmx asked for a partial.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	if status == 0 {
		status = http.StatusOK
	}
	if !WantsPartial(r) {
		if err := h.T.Render(w, status, tmplLayout, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	title, _ := data["Title"].(string)
	pageTitle, _ := data["PageTitle"].(string)
	current, _ := data["CurrentPage"].(string)

	var buf bytes.Buffer
	// htmx updates document.title from a leading <title> element.
	buf.WriteString(`<title>` + html.EscapeString(title) + `</title>`)
	buf.WriteString(`<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` +
		html.EscapeString(pageTitle) + `</h1>`)
	if err := h.T.Execute(&buf, ContentTemplateFor(current), data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.Path})
	// htmx does not swap error statuses; failures travel inside the fragment.
	w.WriteHeader(http.StatusOK)
	h.write(w, buf.Bytes())
}

// renderFragment renders a named partial such as a dialog.
func (h *UIHandlers) renderFragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	if err := h.T.Render(w, http.StatusOK, name, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, name)
	}
}

func (h *UIHandlers) write(w http.ResponseWriter, b []byte) {
	if _, err := w.Write(b); err != nil {
		h.logger().Error("failed to write response", "error", err)
	}
}

// translateFailure applies the route-level error policy. It reports true when
// the response was already written (redirects); otherwise it returns the
// normalized failure for the caller to render in place.
func (h *UIHandlers) translateFailure(w http.ResponseWriter, r *http.Request, err error) (apperrors.Failure, bool) {
	f := apperrors.Normalize(err)
	switch {
	case apperrors.IsUnauthorized(err):
		redirectToLogin(w, r)
		return f, true
	case apperrors.IsForbidden(err):
		redirect(w, r, DefaultRoute)
		return f, true
	}
	if f.Status >= http.StatusInternalServerError {
		h.logger().Error("remote call failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
		)
	}
	return f, false
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		h.write(w, []byte(`<div class="template-error"><h2>Template Rendering Error</h2>`+
			`<p><strong>Context:</strong> `+html.EscapeString(context)+`</p>`+
			`<p><strong>Path:</strong> `+html.EscapeString(r.URL.Path)+`</p>`+
			`<pre>`+html.EscapeString(err.Error())+`</pre></div>`))
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
