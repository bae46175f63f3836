// ABOUTME: Modal dialog for uploading a story document, backed by the upload flow state machine.
// ABOUTME: Wraps a bubbles filepicker for choosing the file and renders flow progress and status.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/fable/upload"
)

// UploadModalModel renders the upload dialog. File selection is delegated to
// a bubbles filepicker; everything else (progress, status, button enablement)
// comes from the upload flow snapshot.
type UploadModalModel struct {
	flow       *upload.Flow
	filepicker filepicker.Model
	width      int
	height     int
}

// NewUploadModalModel creates an upload modal bound to the given flow.
func NewUploadModalModel(flow *upload.Flow) UploadModalModel {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf", ".txt"}
	fp.FileAllowed = true
	fp.DirAllowed = false
	fp.Height = 8

	// Start in the user's home directory, else the working directory.
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	} else {
		fp.CurrentDirectory = "."
	}

	return UploadModalModel{
		flow:       flow,
		filepicker: fp,
	}
}

// Init returns the filepicker's initial command, which reads the start directory.
func (m UploadModalModel) Init() tea.Cmd {
	return m.filepicker.Init()
}

// Flow returns the underlying upload flow.
func (m UploadModalModel) Flow() *upload.Flow {
	return m.flow
}

// SetSize sets the available dimensions and resizes the file listing.
func (m *UploadModalModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	listHeight := h - 12
	if listHeight < 4 {
		listHeight = 4
	}
	m.filepicker.Height = listHeight
}

// Update forwards incoming tea.Msg events to the filepicker and records a
// selection on the flow when the user picks a file. Returns the updated model.
func (m UploadModalModel) Update(msg tea.Msg) (UploadModalModel, tea.Cmd) {
	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if ok, path := m.filepicker.DidSelectFile(msg); ok {
		m.flow.Select(path)
	}

	return m, cmd
}

// View renders the upload dialog. Returns an empty string when the flow is hidden.
func (m UploadModalModel) View() string {
	v := m.flow.View()
	if !v.Visible {
		return ""
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("UPLOAD STORY"))
	b.WriteString("\n\n")

	if v.Status == upload.StatusUploading || v.Status == upload.StatusSuccess {
		// The listing is read-only mid-upload; show only the chosen file.
		b.WriteString(fmt.Sprintf("File: %s\n", v.FileName))
		b.WriteString(progressBar(v.Progress))
		b.WriteString("\n")
	} else {
		b.WriteString(m.filepicker.View())
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("File: %s\n", v.FileName))
	}

	if v.StatusText != "" {
		style := InfoFlashStyle
		if v.StatusIsError {
			style = ErrorFlashStyle
		}
		b.WriteString(style.Render(v.StatusText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(uploadHelp(v))

	return ModalStyle.Render(b.String())
}

// uploadHelp renders the key help line with unavailable actions omitted.
func uploadHelp(v upload.View) string {
	parts := []string{"enter: choose file"}
	if v.ConfirmEnabled {
		parts = append(parts, "s: upload")
	}
	if v.CancelEnabled {
		parts = append(parts, "c: cancel")
	}
	parts = append(parts, "esc: close")
	return strings.Join(parts, "   ")
}

// progressBar renders a ten-cell bar for a 0-100 progress value.
func progressBar(progress int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := progress / 10
	return fmt.Sprintf("[%s%s] %d%%",
		strings.Repeat("#", filled),
		strings.Repeat(".", 10-filled),
		progress)
}
