package httpx

// Page identifiers used by templates and navigation.
const (
	PageDashboard    = "dashboard"
	PageClasses      = "classes"
	PageStudents     = "students"
	PageTransactions = "transactions"
)

// DefaultRoute is where signed-in users land and where forbidden requests are sent.
const DefaultRoute = "/"

// AppName prefixes every document title.
const AppName = "Harmonia"

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"
	TemplatePathFromTest = "../../frontend/templates"
)

// Named templates rendered directly by handlers.
const (
	tmplLayout         = "layout"
	tmplErrorLayout    = "error-layout"
	tmplSignedOut      = "signed-out-page"
	tmplConfirmDialog  = "confirm-dialog"
	tmplMutationDialog = "mutation-dialog"
)

//nolint:gochecknoglobals // static read-only lookup
var contentTemplates = map[string]string{
	PageDashboard:    "dashboard-content",
	PageClasses:      "classes-content",
	PageStudents:     "students-content",
	PageTransactions: "transactions-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to dashboard-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "dashboard-content"
}
