// ABOUTME: Upload modal lifecycle: pick a file, submit it, and track progress and status.
// ABOUTME: Cancel resets everything and hides; dismissal hides without resetting.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/2389-research/fable/api"
	"github.com/2389-research/fable/diag"
)

// Status names the upload session's lifecycle stage.
type Status string

const (
	// StatusIdle means no file is selected.
	StatusIdle Status = "idle"
	// StatusSelecting means a file is chosen and confirm is available.
	StatusSelecting Status = "selecting"
	// StatusUploading means the request is in flight; confirm and cancel are disabled.
	StatusUploading Status = "uploading"
	// StatusSuccess means the upload landed; a full catalog reload follows.
	StatusSuccess Status = "success"
	// StatusError means the upload failed; confirm and cancel are re-enabled.
	StatusError Status = "error"
)

// NoFileSelected is the displayed filename when nothing is chosen.
const NoFileSelected = "No file selected"

// ReloadDelay is how long a successful upload shows its message before the
// catalog reloads.
const ReloadDelay = 1500 * time.Millisecond

var (
	// ErrNoFileSelected is returned by Submit when no file is chosen.
	ErrNoFileSelected = errors.New("no file selected")
	// ErrUploadInFlight is returned by Submit while an upload is running.
	ErrUploadInFlight = errors.New("upload already in flight")
)

// View is a snapshot of the session for rendering.
type View struct {
	Status         Status
	FileName       string
	FilePath       string
	Progress       int
	StatusText     string
	StatusIsError  bool
	Visible        bool
	ConfirmEnabled bool
	CancelEnabled  bool
}

// Flow owns one upload session: the chosen file, progress, status feedback,
// and the modal's visibility. It never touches conversation state; a
// successful upload is followed by a full catalog reload instead of a merge.
type Flow struct {
	mu            sync.Mutex
	client        *api.Client
	diag          *diag.Diagnostics
	status        Status
	filePath      string
	progress      int
	statusText    string
	statusIsError bool
	visible       bool
}

// Option configures a Flow.
type Option func(*Flow)

// WithDiagnostics routes the flow's diagnostic records to d.
func WithDiagnostics(d *diag.Diagnostics) Option {
	return func(f *Flow) {
		f.diag = d
	}
}

// NewFlow creates an idle, hidden upload session.
func NewFlow(client *api.Client, opts ...Option) *Flow {
	f := &Flow{
		client: client,
		diag:   diag.New(),
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// View returns a rendering snapshot of the session.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := NoFileSelected
	if f.filePath != "" {
		name = filepath.Base(f.filePath)
	}
	return View{
		Status:         f.status,
		FileName:       name,
		FilePath:       f.filePath,
		Progress:       f.progress,
		StatusText:     f.statusText,
		StatusIsError:  f.statusIsError,
		Visible:        f.visible,
		ConfirmEnabled: f.filePath != "" && (f.status == StatusSelecting || f.status == StatusError),
		CancelEnabled:  f.status != StatusUploading,
	}
}

// Open shows the modal. Session state carries over from a prior dismissal.
func (f *Flow) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = true
}

// Dismiss hides the modal without resetting the session, so reopening
// resumes where the user left off.
func (f *Flow) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = false
}

// Select records the chosen file. An empty path clears the selection and
// reverts the displayed name to the sentinel. Ignored mid-upload.
func (f *Flow) Select(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == StatusUploading {
		return
	}
	f.statusText = ""
	f.statusIsError = false
	if path == "" {
		f.filePath = ""
		f.status = StatusIdle
		return
	}
	f.filePath = path
	f.status = StatusSelecting
	f.diag.Record("upload", "file_selected", map[string]string{"file": filepath.Base(path)})
}

// Cancel resets every piece of session state and hides the modal.
// Safe to call from any state, repeatedly.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filePath = ""
	f.progress = 0
	f.statusText = ""
	f.statusIsError = false
	f.status = StatusIdle
	f.visible = false
	f.diag.Record("upload", "cancelled", nil)
}

// Submit posts the selected file to the ingestion endpoint. Any non-OK
// status is a uniform failure surfaced as red status text with confirm and
// cancel re-enabled. On success, progress is forced to 100 and the caller
// is expected to trigger a full catalog reload after ReloadDelay.
func (f *Flow) Submit(ctx context.Context) (*api.UploadResult, error) {
	f.mu.Lock()
	if f.status == StatusUploading {
		f.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	if f.filePath == "" {
		f.mu.Unlock()
		return nil, ErrNoFileSelected
	}
	path := f.filePath
	f.status = StatusUploading
	f.progress = 50
	f.statusText = "Uploading..."
	f.statusIsError = false
	f.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		f.fail(fmt.Sprintf("Could not read %s", filepath.Base(path)))
		f.diag.Record("upload", "read_failed", map[string]string{"file": path, "error": err.Error()})
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	result, err := f.client.UploadPDF(ctx, filepath.Base(path), file)
	if err != nil {
		f.fail(uploadErrorText(err))
		f.diag.Record("upload", "upload_failed", map[string]string{
			"file":  filepath.Base(path),
			"error": err.Error(),
		})
		return nil, err
	}

	f.mu.Lock()
	f.status = StatusSuccess
	f.progress = 100
	f.statusText = fmt.Sprintf("Upload successful: %s", result.Title)
	f.statusIsError = false
	f.mu.Unlock()

	f.diag.Record("upload", "upload_succeeded", map[string]string{
		"file":     filepath.Base(path),
		"story_id": result.StoryID,
		"title":    result.Title,
	})
	return result, nil
}

// fail flips the session into the error state with red status text.
func (f *Flow) fail(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = StatusError
	f.statusText = text
	f.statusIsError = true
}

// uploadErrorText extracts the status text for display, keeping the raw
// HTTP status visible when the server rejected the upload.
func uploadErrorText(err error) string {
	var appErr *api.ApplicationError
	if errors.As(err, &appErr) && appErr.Status != "" {
		return fmt.Sprintf("Upload failed: %s", appErr.Status)
	}
	return fmt.Sprintf("Upload failed: %s", err.Error())
}
