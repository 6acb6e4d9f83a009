package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
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
	"github.com/harmonia-academy/harmonia-web/internal/mocks"
)

type uiFixture struct {
	h            *UIHandlers
	classes      *mocks.MockClassesService
	students     *mocks.MockStudentsService
	transactions *mocks.MockTransactionsService
}

func newUIFixture(t *testing.T) uiFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := uiFixture{
		classes:      mocks.NewMockClassesService(ctrl),
		students:     mocks.NewMockStudentsService(ctrl),
		transactions: mocks.NewMockTransactionsService(ctrl),
	}
	f.h = CreateUIHandlersForTest(t, f.classes, f.students, f.transactions)
	return f
}

// signedIn attaches a session of role to req the way RequireRoleBrowser does.
func signedIn(req *http.Request, role domainauth.Role) *http.Request {
	ctx := SetSessionInContext(req.Context(), testSession(string(role), role))
	return req.WithContext(ctx)
}

func htmxRequest(req *http.Request) *http.Request {
	req.Header.Set("Hx-Request", "true")
	return req
}

func ptr[T any](v T) *T { return &v }

func sampleClasses() []model.Class {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return []model.Class{
		{ID: "c1", Name: "Beginner Piano A", Level: ptr("Beginner"), TeacherName: ptr("Bao Tran"), Status: model.ClassStatusDraft, Capacity: 8, Enrolled: 3, StartDate: &start},
		{ID: "c2", Name: "Jazz Harmony", TeacherName: nil, Status: model.ClassStatusOngoing, Capacity: 6, Enrolled: 6, Published: true},
	}
}

func TestClassListRendersFullPage(t *testing.T) {
	f := newUIFixture(t)
	f.classes.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, scope apiclient.Scope, q listing.Query) (listing.Page[model.Class], error) {
			assert.Equal(t, "id-token-staff", scope.Token)
			assert.Equal(t, 1, q.Page)
			assert.Equal(t, 20, q.PageSize)
			assert.Equal(t, "startDate", q.SortColumn)
			assert.Equal(t, listing.Desc, q.SortDirection)
			assert.Equal(t, []string{"0"}, q.Filters["statuses"])
			return listing.Page[model.Class]{
				Data:     sampleClasses(),
				Metadata: listing.Metadata{TotalCount: 22, PageCount: 2, CurrentPage: 1, PageSize: 20},
			}, nil
		})
	f.classes.EXPECT().Teachers(gomock.Any(), gomock.Any()).Return([]model.Teacher{{ID: "t1", FullName: "Bao Tran"}}, nil)

	req := signedIn(httptest.NewRequest(http.MethodGet, "/classes?statuses=0&page-size=20&unknown=x", nil), domainauth.RoleStaff)
	w := httptest.NewRecorder()
	f.h.ClassList(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<title>Classes - Harmonia</title>")
	assert.Contains(t, body, "Beginner Piano A")
	assert.Contains(t, body, "3/8")
	assert.Contains(t, body, "Sep 1, 2026")
	assert.Contains(t, body, `<td class=" missing">No information</td>`, "nil teacher renders the no-information marker")
	assert.Contains(t, body, `value="t1"`, "teacher filter options")
	assert.Contains(t, body, "1 to 2 of 22")
	assert.Contains(t, body, "/classes/c1/publish", "draft class can be published")
	assert.NotContains(t, body, "/classes/c2/publish", "published class has no publish action")
	assert.NotContains(t, body, "unknown=x", "unknown parameters are dropped")
	assert.Contains(t, body, "page=2", "next page link")
}

func TestClassListTeacherHasNoManageActions(t *testing.T) {
	f := newUIFixture(t)
	f.classes.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(listing.Page[model.Class]{Data: sampleClasses(), Metadata: listing.Metadata{TotalCount: 2, PageCount: 1, CurrentPage: 1, PageSize: 10}}, nil)
	f.classes.EXPECT().Teachers(gomock.Any(), gomock.Any()).Return(nil, apperrors.Unavailable("school API unavailable"))

	w := httptest.NewRecorder()
	f.h.ClassList(w, signedIn(httptest.NewRequest(http.MethodGet, "/classes", nil), domainauth.RoleTeacher))

	require.Equal(t, http.StatusOK, w.Code, "a failed filter option load does not fail the page")
	assert.NotContains(t, w.Body.String(), "/delete")
	assert.NotContains(t, w.Body.String(), `name="teacher-ids"`)
}

func TestClassListInvalidFilterIsDroppedAndReported(t *testing.T) {
	f := newUIFixture(t)
	f.classes.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ apiclient.Scope, q listing.Query) (listing.Page[model.Class], error) {
			assert.NotContains(t, q.Filters, "statuses", "invalid filter never reaches the API")
			assert.Equal(t, []string{"piano"}, q.Filters["keyword"])
			return listing.Empty[model.Class](q), nil
		})
	f.classes.EXPECT().Teachers(gomock.Any(), gomock.Any()).Return(nil, nil)

	w := httptest.NewRecorder()
	f.h.ClassList(w, signedIn(httptest.NewRequest(http.MethodGet, "/classes?statuses=42&keyword=piano", nil), domainauth.RoleStaff))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="field-error"`)
	assert.Contains(t, w.Body.String(), "No classes match these filters.")
}

func TestStudentListSortLinksFlipDirection(t *testing.T) {
	f := newUIFixture(t)
	f.students.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(listing.Page[model.Student]{
			Data:     []model.Student{{ID: "s1", FullName: "Linh Pham", Email: ptr("linh@example.com"), Status: model.StudentStatus(0)}},
			Metadata: listing.Metadata{TotalCount: 1, PageCount: 1, CurrentPage: 1, PageSize: 10},
		}, nil)
	f.classes.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(listing.Page[model.Class]{Data: sampleClasses()}, nil)

	w := httptest.NewRecorder()
	f.h.StudentList(w, signedIn(httptest.NewRequest(http.MethodGet, "/students?sort-column=fullName&sort-direction=asc", nil), domainauth.RoleTeacher))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Linh Pham")
	assert.Contains(t, body, `aria-sort="ascending"`)
	assert.Contains(t, body, "sort-column=fullName&amp;sort-direction=desc")
	assert.Contains(t, body, `name="student-class-ids"`)
}

func TestListPartialSetsPushURLAndOOBTitle(t *testing.T) {
	f := newUIFixture(t)
	f.transactions.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(listing.Page[model.Transaction]{Metadata: listing.Metadata{CurrentPage: 1, PageSize: 10}}, nil)

	req := htmxRequest(httptest.NewRequest(http.MethodGet, "/transactions?payment-methods=1", nil))
	w := httptest.NewRecorder()
	f.h.TransactionList(w, signedIn(req, domainauth.RoleStaff))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, `hx-swap-oob="outerHTML"`)
	assert.Contains(t, body, "Tuition transactions")
	assert.Contains(t, w.Header().Get("Hx-Push-Url"), "payment-methods=1")
	assert.Contains(t, w.Header().Get("Hx-Trigger"), "nav:activate")
}

func TestListRemoteFailureRendersInPlace(t *testing.T) {
	f := newUIFixture(t)
	f.transactions.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(listing.Page[model.Transaction]{}, apperrors.Unavailable("The school service is unavailable."))

	w := httptest.NewRecorder()
	f.h.TransactionList(w, signedIn(httptest.NewRequest(http.MethodGet, "/transactions", nil), domainauth.RoleStaff))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "The school service is unavailable.")
	assert.Contains(t, w.Body.String(), "No transactions in this period.")
}

func TestListUnauthorizedSendsToSignIn(t *testing.T) {
	f := newUIFixture(t)
	f.classes.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(listing.Page[model.Class]{}, apperrors.Unauthorized("token expired"))
	f.classes.EXPECT().Teachers(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	w := httptest.NewRecorder()
	f.h.ClassList(w, signedIn(httptest.NewRequest(http.MethodGet, "/classes", nil), domainauth.RoleStaff))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login?redirect_uri=%2Fclasses")
}

func TestTransactionDateRangeValidation(t *testing.T) {
	errs := validateTransactionFilters(listing.Query{Filters: listing.Filters{
		"startDate": {"2026-03-10"},
		"endDate":   {"2026-03-01"},
	}})
	assert.Contains(t, errs, "end-date")
	assert.NotContains(t, errs, "start-date")

	errs = validateTransactionFilters(listing.Query{Filters: listing.Filters{"startDate": {"10/03/2026"}}})
	assert.Contains(t, errs, "start-date")

	assert.Nil(t, validateTransactionFilters(listing.Query{Filters: listing.Filters{
		"startDate":       {"2026-03-01"},
		"endDate":         {"2026-03-31"},
		"paymentStatuses": {"1"},
	}}))
}

func TestListSequencersKeepOnlyLatest(t *testing.T) {
	seqs := newListSequencers(time.Minute)
	first := seqs.next("s|/classes")
	second := seqs.next("s|/classes")
	other := seqs.next("s|/students")

	assert.False(t, seqs.current("s|/classes", first))
	assert.True(t, seqs.current("s|/classes", second))
	assert.True(t, seqs.current("s|/students", other))
}

func TestListSequencersPruneIdleOwners(t *testing.T) {
	seqs := newListSequencers(time.Minute)
	now := time.Now()
	seqs.now = func() time.Time { return now }
	ticket := seqs.next("idle")

	now = now.Add(2 * time.Minute)
	seqs.next("active")

	assert.False(t, seqs.current("idle", ticket))
}
