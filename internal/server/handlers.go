package server

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/jonathan/resume2portfolio/internal/shell"
	"github.com/jonathan/resume2portfolio/internal/transfer"
	"github.com/jonathan/resume2portfolio/internal/upload"
)

// Stream event names.
const (
	eventStarted = "started"
	eventPreview = "preview"
	eventBusy    = "busy"
)

// intakePage is the view model for templates/intake.html.
type intakePage struct {
	Dragging    bool
	Message     string
	Accept      string
	MaxUploadMB int
}

// handleIndex renders whichever view the session's shell is on.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sh := s.sessions.shellFor(w, r)
	snap := sh.Snapshot()

	w.Header().Set("Cache-Control", "no-store")

	switch snap.View {
	case shell.Preview:
		var buf bytes.Buffer
		if err := s.view.Render(&buf, snap.Profile); err != nil {
			log.Printf("[server] failed to render portfolio: %v", err)
			http.Error(w, "failed to render portfolio", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		buf.WriteTo(w) //nolint:errcheck
	case shell.Loading:
		s.renderPage(w, "loading.html", nil)
	default:
		s.renderPage(w, "intake.html", intakePage{
			Dragging:    snap.Gate.State == upload.Dragging,
			Message:     snap.Gate.Message,
			Accept:      upload.AcceptHint,
			MaxUploadMB: s.maxUploadMB,
		})
	}
}

// handleUpload submits the form file and redirects to the resulting view.
// POST /upload/drop takes the drag-and-drop path through the gate.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sh := s.sessions.shellFor(w, r)

	file, ok, err := readUpload(r)
	if err != nil {
		http.Error(w, "expected a multipart form with a file field", http.StatusBadRequest)
		return
	}
	if ok {
		dropped := r.URL.Path == "/upload/drop"
		if err := submit(r.Context(), sh, file, dropped); err != nil {
			log.Printf("[server] upload of %q not completed: %v", file.Name, err)
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleUploadStream runs the same flow as handleUpload and reports it as
// server-sent events: "started", then "preview", "error" or "busy".
func (s *Server) handleUploadStream(w http.ResponseWriter, r *http.Request) {
	sh := s.sessions.shellFor(w, r)

	file, ok, err := readUpload(r)
	if err != nil || !ok {
		http.Error(w, "expected a multipart form with a file field", http.StatusBadRequest)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	started := make(chan struct{}, 1)
	cancel := sh.Observe(func(ev shell.Event) {
		if ev.Kind == eventStarted {
			select {
			case started <- struct{}{}:
			default:
			}
		}
	})
	defer cancel()

	done := make(chan error, 1)
	dropped := r.URL.Query().Get("source") == "drop"
	go func() {
		done <- submit(r.Context(), sh, file, dropped)
	}()

	for {
		select {
		case <-started:
			sse.WriteEvent(eventStarted, struct{}{}) //nolint:errcheck
		case err := <-done:
			select {
			case <-started:
				sse.WriteEvent(eventStarted, struct{}{}) //nolint:errcheck
			default:
			}
			writeOutcome(sse, err)
			return
		case <-r.Context().Done():
			// The submission keeps going; the next page load shows its result.
			return
		}
	}
}

// handleDrag applies drag enter and leave to the intake gate.
func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	gate := s.sessions.shellFor(w, r).Gate()

	switch r.FormValue("state") {
	case "enter":
		gate.DragEnter()
	case "leave":
		gate.DragLeave()
	default:
		http.Error(w, "state must be enter or leave", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReset clears the session's portfolio and returns to intake. A reset
// during a submission is ignored and the redirect shows the loading view.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.shellFor(w, r).Reset(); err != nil {
		log.Printf("[server] reset ignored: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[server] failed to render %s: %v", name, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w) //nolint:errcheck
}

// submit hands file to the shell. The request context only contributes its
// values: leaving the page must not abort a submission already underway.
func submit(ctx context.Context, sh *shell.Shell, file transfer.File, dropped bool) error {
	ctx = context.WithoutCancel(ctx)
	if dropped {
		return sh.Drop(ctx, file)
	}
	return sh.Select(ctx, file)
}

// readUpload extracts the "file" part. ok is false when no file was chosen.
func readUpload(r *http.Request) (file transfer.File, ok bool, err error) {
	f, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return transfer.File{}, false, nil
	}
	if err != nil {
		return transfer.File{}, false, err
	}
	return transfer.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        f,
	}, true, nil
}

func writeOutcome(sse *SSEWriter, err error) {
	var validationErr *upload.ValidationError

	switch {
	case err == nil, errors.Is(err, shell.ErrPreviewActive):
		sse.WriteEvent(eventPreview, struct{}{}) //nolint:errcheck
	case errors.Is(err, upload.ErrBusy):
		sse.WriteEvent(eventBusy, struct{}{}) //nolint:errcheck
	case errors.As(err, &validationErr):
		sse.WriteError(upload.UnsupportedTypeMessage)
	default:
		sse.WriteError(upload.FailureMessage)
	}
}
