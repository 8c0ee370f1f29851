// Package shell holds the top-level view state of one visitor: intake, loading or
// preview, and mediates the reset back to intake.
package shell

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/jonathan/resume2portfolio/internal/profile"
	"github.com/jonathan/resume2portfolio/internal/schemas"
	"github.com/jonathan/resume2portfolio/internal/transfer"
	"github.com/jonathan/resume2portfolio/internal/upload"
)

// View is the screen the visitor is on.
type View int

// Screens.
const (
	Intake View = iota
	Loading
	Preview
)

func (v View) String() string {
	switch v {
	case Intake:
		return "intake"
	case Loading:
		return "loading"
	case Preview:
		return "preview"
	default:
		return "unknown"
	}
}

// Event is emitted on view changes so streaming clients can follow an upload.
type Event struct {
	Kind    string // "started", "preview" or "error"
	Message string
}

// Snapshot is a consistent read of the shell for rendering.
type Snapshot struct {
	View    View
	Gate    upload.Status
	Profile *profile.Profile
}

// Shell composes the upload gate with the profile it produces.
type Shell struct {
	submitter upload.Submitter

	mu       sync.Mutex
	view     View
	gate     *upload.Gate
	gen      int
	profile  *profile.Profile
	observer func(Event)
}

// attempt binds a gate to the shell generation it was created in, so a gate
// discarded by Reset cannot touch the new state.
type attempt struct {
	shell *Shell
	gen   int
}

func (a attempt) UploadStarted() {
	a.shell.uploadStarted(a.gen)
}

func (a attempt) UploadSucceeded(raw transfer.RawSubmission) error {
	return a.shell.uploadSucceeded(a.gen, raw)
}

// New creates a shell on the intake screen.
func New(submitter upload.Submitter) *Shell {
	s := &Shell{submitter: submitter, view: Intake}
	s.gate = upload.NewGate(submitter, attempt{shell: s, gen: s.gen})
	return s
}

// Snapshot returns the current view, gate status and profile.
func (s *Shell) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{View: s.view, Gate: s.gate.Status(), Profile: s.profile}
}

// Gate exposes the intake gate for drag events.
func (s *Shell) Gate() *upload.Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate
}

// Observe registers fn for view events until the returned func is called.
// Only one observer is kept; a new one replaces the previous.
func (s *Shell) Observe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.observer = nil
		s.mu.Unlock()
	}
}

// Select submits a picked file through the gate.
func (s *Shell) Select(ctx context.Context, file transfer.File) error {
	return s.submit(ctx, file, false)
}

// Drop submits a dropped file through the gate.
func (s *Shell) Drop(ctx context.Context, file transfer.File) error {
	return s.submit(ctx, file, true)
}

func (s *Shell) submit(ctx context.Context, file transfer.File, dropped bool) error {
	s.mu.Lock()
	if s.view == Preview {
		s.mu.Unlock()
		if c, ok := file.Body.(io.Closer); ok {
			c.Close() //nolint:errcheck
		}
		return ErrPreviewActive
	}
	gate := s.gate
	s.mu.Unlock()

	var err error
	if dropped {
		err = gate.Drop(ctx, file)
	} else {
		err = gate.Select(ctx, file)
	}

	if err != nil && !errors.Is(err, upload.ErrBusy) {
		s.mu.Lock()
		if s.gate == gate {
			s.view = Intake
		}
		s.mu.Unlock()
		s.emit(Event{Kind: "error", Message: gate.Status().Message})
	}
	return err
}

func (s *Shell) uploadStarted(gen int) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.view = Loading
	s.mu.Unlock()
	s.emit(Event{Kind: "started"})
}

// uploadSucceeded normalizes the response. A response that cannot become a
// profile is returned as an error so the gate reports a failed upload.
// The raw body is not retained.
func (s *Shell) uploadSucceeded(gen int, raw transfer.RawSubmission) error {
	if err := schemas.ValidateRawSubmission(raw); err != nil {
		log.Printf("[shell] upload response deviates from documented shape: %v", err)
	}

	p, err := profile.Normalize(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return nil
	}
	s.profile = p
	s.view = Preview
	s.mu.Unlock()

	log.Printf("[shell] preview ready for file %s", p.FileID)
	s.emit(Event{Kind: "preview"})
	return nil
}

// Reset drops the profile and returns to a fresh intake. It never talks to the backend.
// While a submission is in flight it changes nothing and returns ErrSubmitting.
func (s *Shell) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == Loading || s.gate.Status().State == upload.Submitting {
		return ErrSubmitting
	}
	s.profile = nil
	s.view = Intake
	s.gen++
	s.gate = upload.NewGate(s.submitter, attempt{shell: s, gen: s.gen})
	return nil
}

func (s *Shell) emit(ev Event) {
	s.mu.Lock()
	fn := s.observer
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}
