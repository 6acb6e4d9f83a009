package httpx

import (
	"context"
	"net/http"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	domainauth "github.com/harmonia-academy/harmonia-web/internal/domain/auth"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
	"golang.org/x/sync/errgroup"
)

// DashboardCard summarizes one list on the dashboard.
type DashboardCard struct {
	Label string
	Href  string
	Total int
	// Error is set when the total could not be loaded.
	Error string
}

type dashboardSource struct {
	label string
	href  string
	role  domainauth.Role
	count func(ctx context.Context, scope apiclient.Scope) (int, error)
}

// totalOf reads only the total count of a list by asking for a single row.
func totalOf[T any](list func(context.Context, apiclient.Scope, listing.Query) (listing.Page[T], error)) func(context.Context, apiclient.Scope) (int, error) {
	return func(ctx context.Context, scope apiclient.Scope) (int, error) {
		page, err := list(ctx, scope, listing.Query{Page: 1, PageSize: 1})
		if err != nil {
			return 0, err
		}
		return page.Metadata.TotalCount, nil
	}
}

func (h *UIHandlers) dashboardSources() []dashboardSource {
	return []dashboardSource{
		{label: "Classes", href: "/classes", role: roleViewLists, count: totalOf(h.Classes.List)},
		{label: "Students", href: "/students", role: roleViewLists, count: totalOf(h.Students.List)},
		{label: "Tuition transactions", href: "/transactions", role: roleViewPayments, count: totalOf(h.Transactions.List)},
	}
}

// Dashboard serves the home page: the signed-in user and a card per list they can open.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	b := NewTemplateData(r, PageMeta{Title: "Dashboard", PageTitle: "Dashboard", CurrentPage: PageDashboard})
	if session == nil || session.IsGuest() {
		b.With("Guest", true)
		h.renderPage(w, r, b.Build(), http.StatusOK)
		return
	}

	var sources []dashboardSource
	for _, src := range h.dashboardSources() {
		if session.Role.AtLeast(src.role) {
			sources = append(sources, src)
		}
	}

	cards := make([]DashboardCard, len(sources))
	errs := make([]error, len(sources))
	g, gctx := errgroup.WithContext(r.Context())
	scope := apiScope(r)
	for i, src := range sources {
		g.Go(func() error {
			cards[i] = DashboardCard{Label: src.label, Href: src.href}
			total, err := src.count(gctx, scope)
			if err != nil {
				errs[i] = err
				cards[i].Error = apperrors.Normalize(err).Message
				return nil
			}
			cards[i].Total = total
			return nil
		})
	}
	_ = g.Wait()

	// An expired token fails every card the same way; send the user to sign in once.
	for _, err := range errs {
		if apperrors.IsUnauthorized(err) {
			redirectToLogin(w, r)
			return
		}
	}

	b.With("Cards", cards)
	h.renderPage(w, r, b.Build(), http.StatusOK)
}
