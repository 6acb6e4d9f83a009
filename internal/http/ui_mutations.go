package httpx

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/harmonia-academy/harmonia-web/internal/confirm"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
	"github.com/harmonia-academy/harmonia-web/internal/mutation"
	"github.com/harmonia-academy/harmonia-web/internal/observability/metrics"
	"github.com/harmonia-academy/harmonia-web/internal/storage"
)

const (
	// multipartMemory is kept in memory while parsing uploads; the rest spills to disk.
	multipartMemory = 1 << 20
)

// MutationDialog is the view model of the result dialog of one mutation.
type MutationDialog struct {
	ID         string
	Title      string
	Phase      mutation.Phase
	Succeeded  bool
	Message    string
	Details    []string
	Link       string
	CanDismiss bool
	CSRFToken  string
}

// FormDialog is the view model of a dialog that collects input before a mutation.
type FormDialog struct {
	Title     string
	Action    string
	CSRFToken string
	Errors    map[string]string
	Values    map[string]string
	Options   []FilterOption
	Message   string
}

// ConfirmDialog is the view model of the confirmation modal.
type ConfirmDialog struct {
	confirm.Dialog
	Title     string
	Action    string
	CSRFToken string
}

type publishForm struct {
	NotifyStudents bool   `form:"notify_students"`
	Note           string `form:"note" validate:"omitempty,max=500"`
}

type importForm struct {
	Sheet   string `form:"sheet" validate:"notblank,sheetfile"`
	ClassID string `form:"class_id" validate:"omitempty,max=64"`
}

func dialogOwner(r *http.Request) string {
	if s := GetSessionFromContext(r.Context()); s != nil {
		return s.ID
	}
	return "anonymous"
}

// transitionLogger records every phase change of a mutation and emits the
// outcome once it leaves pending.
func (h *UIHandlers) transitionLogger(ctx context.Context, action, target string) func(from, to mutation.Phase) {
	logger := h.logger().With("action", action, "target", target, "request_id", RequestIDFromContext(ctx))
	var started time.Time
	return func(from, to mutation.Phase) {
		logger.Debug("mutation phase changed", "from", string(from), "to", string(to))
		switch {
		case to == mutation.PhasePending:
			started = time.Now()
		case from == mutation.PhasePending && to.Terminal():
			result := metrics.ResultSuccess
			if to == mutation.PhaseFailed {
				result = metrics.ResultError
			}
			metrics.EmitMutation(h.Metrics, metrics.MutationMetric{
				Action:   action,
				Result:   result,
				Duration: time.Since(started),
			})
		}
	}
}

// finishMutation renders the result dialog of a settled controller, or applies
// the route-level policy for authentication failures.
func finishMutation[T any](h *UIHandlers, w http.ResponseWriter, r *http.Request, ctrl *mutation.Controller[T], dialog MutationDialog, followUp string) {
	res, _ := ctrl.Result()
	switch res.Status() {
	case http.StatusUnauthorized:
		redirectToLogin(w, r)
		return
	case http.StatusForbidden:
		redirect(w, r, DefaultRoute)
		return
	}
	state := ctrl.State()
	dialog.Phase = state.Phase
	dialog.Succeeded = res.OK()
	dialog.CanDismiss = ctrl.CanDismiss()
	dialog.CSRFToken = GetCSRFToken(r)
	if !res.OK() {
		dialog.Message = res.Message()
		dialog.Details = nil
	}
	dialog.ID = h.dialogs().Track(dialogOwner(r), ctrl, followUp)
	h.renderFragment(w, r, tmplMutationDialog, dialog)
}

// closeModal empties the modal container for htmx, or navigates back otherwise.
func closeModal(w http.ResponseWriter, r *http.Request, fallback string) {
	if IsHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, fallback, http.StatusSeeOther)
}

// ClassDeleteConfirm renders the confirmation dialog of a class deletion.
func (h *UIHandlers) ClassDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	class, err := h.Classes.Get(r.Context(), apiScope(r), id)
	if err != nil {
		if f, handled := h.translateFailure(w, r, err); !handled {
			h.renderFragment(w, r, tmplMutationDialog, MutationDialog{
				Title:      "Delete class",
				Phase:      mutation.PhaseFailed,
				Message:    f.Message,
				CanDismiss: true,
				CSRFToken:  GetCSRFToken(r),
			})
		}
		return
	}

	prompt := classDeleteGate(class.Name, nil).Open()
	h.renderFragment(w, r, tmplConfirmDialog, ConfirmDialog{
		Dialog:    prompt.Dialog(),
		Title:     "Delete class",
		Action:    "/classes/" + id + "/delete",
		CSRFToken: GetCSRFToken(r),
	})
}

func classDeleteGate(name string, onConfirm func()) *confirm.Gate {
	desc := "This class will be deleted permanently."
	if name != "" {
		desc = fmt.Sprintf("Delete %q? Students lose their enrollment and this cannot be undone.", name)
	}
	return confirm.Request(desc, onConfirm, nil, confirm.WithLabels("Delete", "Keep class"))
}

// ClassDelete resolves the confirmation and, when confirmed, deletes the class.
func (h *UIHandlers) ClassDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	scope := apiScope(r)
	ctrl := mutation.NewController[struct{}](mutation.Options{
		PreventEscape: true,
		OnTransition:  h.transitionLogger(r.Context(), "delete_class", id),
	})

	gate := classDeleteGate("", func() {
		_, _ = ctrl.Submit(r.Context(), mutation.Call(func(ctx context.Context) (struct{}, error) {
			return struct{}{}, h.Classes.Delete(ctx, scope, id)
		}))
	})
	prompt := gate.Open()
	prompt.Resolve(confirm.ParseDecision(r.PostFormValue("decision")))
	if prompt.Decision() != confirm.Confirmed {
		closeModal(w, r, "/classes")
		return
	}

	finishMutation(h, w, r, ctrl, MutationDialog{
		Title:   "Delete class",
		Message: "The class was deleted.",
	}, "/classes")
}

// ClassPublishForm renders the publish dialog.
func (h *UIHandlers) ClassPublishForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.renderFragment(w, r, "publish-dialog", FormDialog{
		Title:     "Publish class schedule",
		Action:    "/classes/" + id + "/publish",
		CSRFToken: GetCSRFToken(r),
		Values:    map[string]string{"notify_students": "on"},
	})
}

// ClassPublish publishes a class schedule through the mutation lifecycle.
func (h *UIHandlers) ClassPublish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	form := publishForm{
		NotifyStudents: r.PostFormValue("notify_students") != "",
		Note:           strings.TrimSpace(r.PostFormValue("note")),
	}
	if errs := forms.Check(form); errs != nil {
		values := map[string]string{"note": form.Note}
		if form.NotifyStudents {
			values["notify_students"] = "on"
		}
		h.renderFragment(w, r, "publish-dialog", FormDialog{
			Title:     "Publish class schedule",
			Action:    "/classes/" + id + "/publish",
			CSRFToken: GetCSRFToken(r),
			Errors:    errs,
			Values:    values,
			Message:   errMsgFixBelow,
		})
		return
	}

	req := model.PublishClassRequest{NotifyStudents: form.NotifyStudents}
	if form.Note != "" {
		req.Note = &form.Note
	}
	scope := apiScope(r)
	ctrl := mutation.NewController[*model.Class](mutation.Options{
		PreventEscape: true,
		OnTransition:  h.transitionLogger(r.Context(), "publish_class", id),
	})
	res, _ := ctrl.Submit(r.Context(), mutation.Call(func(ctx context.Context) (*model.Class, error) {
		return h.Classes.Publish(ctx, scope, id, req)
	}))

	msg := "The class schedule was published."
	if c := res.Data(); res.OK() && c != nil {
		msg = fmt.Sprintf("The schedule of %s was published.", c.Name)
		if form.NotifyStudents {
			msg += " Students will be notified."
		}
	}
	finishMutation(h, w, r, ctrl, MutationDialog{Title: "Publish class schedule", Message: msg}, "/classes")
}

// StudentImportForm renders the sheet upload dialog.
func (h *UIHandlers) StudentImportForm(w http.ResponseWriter, r *http.Request) {
	h.renderImportForm(w, r, nil, "")
}

func (h *UIHandlers) renderImportForm(w http.ResponseWriter, r *http.Request, errs map[string]string, classID string) {
	dialog := FormDialog{
		Title:     "Import students",
		Action:    "/students/import",
		CSRFToken: GetCSRFToken(r),
		Errors:    errs,
		Values:    map[string]string{"class_id": classID},
	}
	if len(errs) > 0 {
		dialog.Message = errMsgFixBelow
	}
	if classes, err := h.classOptions(r.Context(), apiScope(r)); err == nil {
		for _, c := range classes {
			dialog.Options = append(dialog.Options, FilterOption{Value: c.Value, Label: c.Label, Checked: c.Value == classID})
		}
	} else {
		h.logger().Warn("failed to load import class options", "error", err)
	}
	h.renderFragment(w, r, "import-dialog", dialog)
}

// StudentImport uploads an import sheet and runs the import mutation.
func (h *UIHandlers) StudentImport(w http.ResponseWriter, r *http.Request) {
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		msg := "Choose a sheet to upload."
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = fmt.Sprintf("The file is larger than %s.", byteSize(tooLarge.Limit))
		}
		h.renderImportForm(w, r, map[string]string{"sheet": msg}, "")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	form := importForm{ClassID: strings.TrimSpace(r.FormValue("class_id"))}
	file, header, err := r.FormFile("sheet")
	if err == nil {
		defer file.Close()
		form.Sheet = header.Filename
	}
	if errs := forms.Check(form); errs != nil {
		h.renderImportForm(w, r, errs, form.ClassID)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(header.Filename))); byExt != "" {
			contentType = byExt
		}
	}
	sheet := storage.Object{Name: header.Filename, ContentType: contentType, Content: file}

	scope := apiScope(r)
	ctrl := mutation.NewController[model.ImportSummary](mutation.Options{
		PreventEscape: true,
		OnTransition:  h.transitionLogger(r.Context(), "import_students", header.Filename),
	})
	res, _ := ctrl.Submit(r.Context(), mutation.Call(func(ctx context.Context) (model.ImportSummary, error) {
		return h.Students.Import(ctx, scope, sheet, form.ClassID)
	}))

	dialog := MutationDialog{Title: "Import students"}
	if res.OK() {
		summary := res.Data()
		dialog.Message = fmt.Sprintf("%d students imported, %d skipped.", summary.Imported, summary.Skipped)
		dialog.Details = summary.Errors
		dialog.Link = summary.SheetURL
	}
	finishMutation(h, w, r, ctrl, dialog, "/students")
}

// MutationDismiss closes a result dialog. After a success the browser moves to
// the follow-up page; after a failure the dialog only closes.
func (h *UIHandlers) MutationDismiss(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PostFormValue("dialog_id"))
	followUp, found := h.dialogs().Dismiss(dialogOwner(r), id)
	if !found {
		h.logger().Debug("dismissed unknown mutation dialog", "dialog_id", id)
	}
	if followUp != "" {
		redirect(w, r, followUp)
		return
	}
	back := safeRedirectFromURL(r.Header.Get("Referer"))
	if back == "" {
		back = DefaultRoute
	}
	closeModal(w, r, back)
}

func byteSize(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d KB", n/1024)
}
