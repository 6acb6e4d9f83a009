package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	domainauth "github.com/harmonia-academy/harmonia-web/internal/domain/auth"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

func TestDashboardCardsFollowRole(t *testing.T) {
	tests := []struct {
		name      string
		role      domainauth.Role
		wantCards []string
		hidden    []string
	}{
		{name: "staff", role: domainauth.RoleStaff, wantCards: []string{"Classes", "Students", "Tuition transactions"}},
		{name: "teacher", role: domainauth.RoleTeacher, wantCards: []string{"Classes", "Students"}, hidden: []string{`href="/transactions"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUIFixture(t)
			f.classes.EXPECT().List(gomock.Any(), gomock.Any(), listing.Query{Page: 1, PageSize: 1}).
				Return(listing.Page[model.Class]{Metadata: listing.Metadata{TotalCount: 1250}}, nil)
			f.students.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(listing.Page[model.Student]{Metadata: listing.Metadata{TotalCount: 87}}, nil)
			f.transactions.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(listing.Page[model.Transaction]{Metadata: listing.Metadata{TotalCount: 3}}, nil).
				MaxTimes(1)

			w := httptest.NewRecorder()
			f.h.Dashboard(w, signedIn(httptest.NewRequest(http.MethodGet, "/", nil), tt.role))

			require.Equal(t, http.StatusOK, w.Code)
			body := w.Body.String()
			assert.Contains(t, body, "Welcome back, Ana Lestari.")
			for _, label := range tt.wantCards {
				assert.Contains(t, body, `<span class="card-label">`+label+`</span>`)
			}
			for _, s := range tt.hidden {
				assert.NotContains(t, body, s)
			}
			assert.Contains(t, body, "1,250")
		})
	}
}

func TestDashboardGuestSeesNotice(t *testing.T) {
	f := newUIFixture(t)

	w := httptest.NewRecorder()
	f.h.Dashboard(w, signedIn(httptest.NewRequest(http.MethodGet, "/", nil), domainauth.RoleGuest))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "does not have access to school records yet")
	assert.NotContains(t, w.Body.String(), `class="card"`)
}

func TestDashboardCardErrorDoesNotFailPage(t *testing.T) {
	f := newUIFixture(t)
	f.classes.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(listing.Page[model.Class]{}, apperrors.Unavailable("Classes are unavailable right now."))
	f.students.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(listing.Page[model.Student]{Metadata: listing.Metadata{TotalCount: 4}}, nil)

	w := httptest.NewRecorder()
	f.h.Dashboard(w, signedIn(httptest.NewRequest(http.MethodGet, "/", nil), domainauth.RoleTeacher))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Classes are unavailable right now.")
	assert.Contains(t, w.Body.String(), `<span class="card-total">4</span>`)
}

func TestDashboardUnauthorizedRedirectsOnce(t *testing.T) {
	f := newUIFixture(t)
	f.classes.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(listing.Page[model.Class]{}, apperrors.Unauthorized("expired"))
	f.students.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(listing.Page[model.Student]{}, apperrors.Unauthorized("expired"))

	w := httptest.NewRecorder()
	f.h.Dashboard(w, signedIn(httptest.NewRequest(http.MethodGet, "/", nil), domainauth.RoleTeacher))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login?redirect_uri=%2F", w.Header().Get("Location"))
}

func TestTransactionExportStreamsPDF(t *testing.T) {
	f := newUIFixture(t)
	paid := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	f.transactions.EXPECT().Export(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ apiclient.Scope, q listing.Query) ([]model.Transaction, bool, error) {
			assert.Equal(t, []string{"2026-03-01"}, q.Filters["startDate"])
			assert.Equal(t, "createdAt", q.SortColumn)
			return []model.Transaction{
				{ID: 7, Code: "TX-0007", StudentName: ptr("Linh Pham"), Amount: 1500000, Currency: "VND", CreatedAt: paid, PaidAt: &paid},
				{ID: 8, Code: "TX-0008", Amount: 250, Currency: "VND", CreatedAt: paid},
			}, true, nil
		})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/transactions/export.pdf?start-date=2026-03-01", nil)
	f.h.TransactionExport(w, signedIn(req, domainauth.RoleStaff))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), `attachment; filename="transactions-`))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
	assert.NotEmpty(t, w.Header().Get("Content-Length"))
}

func TestTransactionExportRejectsInvalidFilters(t *testing.T) {
	f := newUIFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/transactions/export.pdf?start-date=2026-03-10&end-date=2026-03-01", nil)
	f.h.TransactionExport(w, signedIn(req, domainauth.RoleStaff))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid export filters")
}

func TestExportHrefDropsPaging(t *testing.T) {
	q := listing.Query{
		Page:          3,
		PageSize:      50,
		SortColumn:    "amount",
		SortDirection: listing.Asc,
		Filters:       listing.Filters{"paymentStatuses": {"1"}},
	}
	assert.Equal(t, "/transactions/export.pdf?payment-statuses=1&sort-column=amount&sort-direction=asc", exportHref(q))
	assert.Equal(t, "/transactions/export.pdf", exportHref(listing.Query{}))
}

func TestExportSubtitle(t *testing.T) {
	q := listing.Query{Filters: listing.Filters{"startDate": {"2026-03-01"}}}
	assert.Equal(t, "2 rows | period 2026-03-01 to ...", exportSubtitle(q, 2, false))
	assert.Contains(t, exportSubtitle(listing.Query{}, 2000, true), "truncated")
}
