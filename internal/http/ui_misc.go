package httpx

import (
	"net/http"

	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

// SignedOut renders a simple signed-out page with a Sign In button.
func (h *UIHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	login := loginURLFor(safeRedirectPath(r.URL.Query().Get("redirect_uri")))
	data := map[string]any{
		"Title":    "Signed out - " + AppName,
		"LoginURL": login,
	}
	if h.T != nil && h.T.Render(w, http.StatusOK, tmplSignedOut, data) == nil {
		return
	}
	http.Redirect(w, r, login, http.StatusSeeOther)
}

// NotFound handles 404 errors with auth-aware behavior.
// Browsers get an HTML error page, API clients a JSON error body.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteAppError(w, apperrors.NotFound("not found"))
		return
	}

	isAuthenticated := GetSessionFromContext(r.Context()) != nil
	data := map[string]any{
		"Title":           "Page not found - " + AppName,
		"Code":            "404",
		"Message":         "The page you're looking for doesn't exist.",
		"IsAuthenticated": isAuthenticated,
		"ShowLogin":       !isAuthenticated,
		"LoginURL":        loginURLFor(safeRedirectPath(r.URL.RequestURI())),
	}

	if h.T == nil || h.T.Render(w, http.StatusNotFound, tmplErrorLayout, data) != nil {
		http.Error(w, "Page not found", http.StatusNotFound)
	}
}
