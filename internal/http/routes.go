package httpx

import (
	"bytes"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"regexp"

	harmonia "github.com/harmonia-academy/harmonia-web"
	domainauth "github.com/harmonia-academy/harmonia-web/internal/domain/auth"
	"github.com/harmonia-academy/harmonia-web/internal/mutation"
	"github.com/harmonia-academy/harmonia-web/internal/observability/statsd"
	"github.com/harmonia-academy/harmonia-web/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Classes      ClassesService
	Students     StudentsService
	Transactions TransactionsService
	Auth         *service.AuthService
	CookieDomain string
	// MaxUploadBytes caps the body of the student import upload.
	MaxUploadBytes int64
	// Ready lists the dependencies /readyz pings.
	Ready map[string]Pinger
	// Dialogs keeps result dialogs between requests. A default registry is
	// created when nil.
	Dialogs *mutation.Registry
	IsDev   bool         // serve templates and static files from disk
	Logger  *slog.Logger // optional
	Metrics statsd.Sink  // optional
}

// NewRouter creates and configures a new HTTP router with browser middleware.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Ready, logger))

	var auth AuthServiceInterface
	if services.Auth != nil {
		auth = services.Auth
		registerAuthRoutes(mux, &AuthHandlers{Svc: services.Auth, CookieDomain: services.CookieDomain, Logger: logger})
	}

	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))

	uiHandlers := setupUIHandlers(services, logger)
	if uiHandlers != nil {
		registerUIRoutes(mux, uiHandlers, uiRouteConfig{Auth: auth})
	}

	handler := &notFoundHandler{mux: mux, uiHandlers: uiHandlers, logger: logger}
	csrf := CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})
	return BrowserDetection()(csrf(handler))
}

// templateFS picks the template source: disk in dev mode for hot reloading,
// the embedded copy otherwise.
func templateFS(isDev bool, logger *slog.Logger) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(harmonia.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		logger.Warn("embedded templates unavailable, falling back to disk", "error", err)
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

func setupUIHandlers(services RouterServices, logger *slog.Logger) *UIHandlers {
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS(services.IsDev, logger),
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create template renderer", slog.Any("error", err))
		return nil
	}

	dialogs := services.Dialogs
	if dialogs == nil {
		dialogs = mutation.NewRegistry(0)
	}
	return &UIHandlers{
		T:              tr,
		Classes:        services.Classes,
		Students:       services.Students,
		Transactions:   services.Transactions,
		Dialogs:        dialogs,
		MaxUploadBytes: services.MaxUploadBytes,
		IsDev:          services.IsDev,
		Logger:         logger,
		Metrics:        services.Metrics,
	}
}

// staticHandler serves /static/* from disk in dev mode and from the embedded FS otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	const dir = "frontend/static"
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	}
	sub, err := fs.Sub(harmonia.StaticFS, dir)
	if err != nil {
		logger.Warn("embedded static assets unavailable, falling back to disk", "error", err)
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
}

var hashedAsset = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

// staticWithCacheHeaders caches content-hashed assets for a year and nothing else.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedAsset.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and provides custom 404 handling.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
	logger     *slog.Logger
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only unmatched routes get the custom page; handlers answering 404 themselves keep their body.
	if _, pattern := h.mux.Handler(r); pattern != "" {
		h.mux.ServeHTTP(w, r)
		return
	}

	cw := newCaptureWriter()
	h.mux.ServeHTTP(cw, r)
	if cw.status != http.StatusNotFound {
		// 405s and redirects from the mux pass through untouched.
		cw.flushTo(w, h.logger)
		return
	}
	if h.uiHandlers != nil {
		h.uiHandlers.NotFound(w, r)
		return
	}
	http.NotFound(w, r)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter, logger *slog.Logger) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		logger.Debug("failed to write captured response", "error", err)
	}
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

// uiRouteConfig holds configuration for UI route registration.
type uiRouteConfig struct {
	Auth AuthServiceInterface
}

// roleWrap requires role on the wrapped handler. Without an auth service
// every route is open, which only tests rely on.
func (cfg uiRouteConfig) roleWrap(role domainauth.Role) func(http.Handler) http.Handler {
	if cfg.Auth == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return RequireRoleBrowser(cfg.Auth, role)
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, cfg uiRouteConfig) {
	signedIn := cfg.roleWrap(domainauth.RoleGuest)
	mux.Handle("GET /{$}", signedIn(http.HandlerFunc(h.Dashboard)))
	mux.Handle("POST /mutations/dismiss", signedIn(http.HandlerFunc(h.MutationDismiss)))
	mux.Handle("GET /auth/signed-out", http.HandlerFunc(h.SignedOut))

	registerUIListRoutes(mux, h, cfg)
	registerUIMutationRoutes(mux, h, cfg)
}

func registerUIListRoutes(mux *http.ServeMux, h *UIHandlers, cfg uiRouteConfig) {
	lists := cfg.roleWrap(roleViewLists)
	payments := cfg.roleWrap(roleViewPayments)
	mux.Handle("GET /classes", lists(http.HandlerFunc(h.ClassList)))
	mux.Handle("GET /students", lists(http.HandlerFunc(h.StudentList)))
	mux.Handle("GET /transactions", payments(http.HandlerFunc(h.TransactionList)))
	mux.Handle("GET /transactions/export.pdf", payments(http.HandlerFunc(h.TransactionExport)))
}

func registerUIMutationRoutes(mux *http.ServeMux, h *UIHandlers, cfg uiRouteConfig) {
	manage := cfg.roleWrap(roleManage)
	mux.Handle("GET /classes/{id}/delete", manage(http.HandlerFunc(h.ClassDeleteConfirm)))
	mux.Handle("POST /classes/{id}/delete", manage(http.HandlerFunc(h.ClassDelete)))
	mux.Handle("GET /classes/{id}/publish", manage(http.HandlerFunc(h.ClassPublishForm)))
	mux.Handle("POST /classes/{id}/publish", manage(http.HandlerFunc(h.ClassPublish)))
	mux.Handle("GET /students/import", manage(http.HandlerFunc(h.StudentImportForm)))
	mux.Handle("POST /students/import", manage(http.HandlerFunc(h.StudentImport)))
}
