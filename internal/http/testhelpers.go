package httpx

import (
	"os"
	"testing"

	"github.com/harmonia-academy/harmonia-web/internal/mutation"
)

// RequireTemplateRenderer creates a TemplateRenderer for tests, skipping the test if templates are not available.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
	})
	if err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
		return nil
	}
	return tr
}

// CreateUIHandlersForTest creates UIHandlers backed by the real templates and
// the given services. Nil services are fine for handlers that never call them.
func CreateUIHandlersForTest(t *testing.T, classes ClassesService, students StudentsService, transactions TransactionsService) *UIHandlers {
	t.Helper()
	return &UIHandlers{
		T:              RequireTemplateRenderer(t),
		Classes:        classes,
		Students:       students,
		Transactions:   transactions,
		Dialogs:        mutation.NewRegistry(0),
		MaxUploadBytes: 1 << 20,
	}
}
