// Package upload implements the file intake state machine: drag tracking,
// type validation and a single in-flight submission to the backend.
package upload

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/jonathan/resume2portfolio/internal/transfer"
)

// State is the intake state.
type State int

// Intake states.
const (
	Idle State = iota
	Dragging
	Submitting
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Submitting:
		return "submitting"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Submitter sends a validated file to the backend.
type Submitter interface {
	Submit(ctx context.Context, file transfer.File) (transfer.RawSubmission, error)
}

// Listener observes a submission. UploadStarted is always called before
// UploadSucceeded for the same attempt. Returning an error from UploadSucceeded
// rejects the response and puts the gate in the error state.
type Listener interface {
	UploadStarted()
	UploadSucceeded(raw transfer.RawSubmission) error
}

// Status is a snapshot of the gate for rendering.
type Status struct {
	State   State
	Message string
}

// Gate feeds both the picker and drag/drop through one validation path.
// It is safe for concurrent use; only one submission runs at a time.
type Gate struct {
	mu        sync.Mutex
	state     State
	message   string
	submitter Submitter
	listener  Listener
}

// NewGate creates a gate in the Idle state.
func NewGate(submitter Submitter, listener Listener) *Gate {
	return &Gate{
		state:     Idle,
		submitter: submitter,
		listener:  listener,
	}
}

// Status returns the current state and message.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Status{State: g.state, Message: g.message}
}

// DragEnter marks a file hovering over the drop region.
func (g *Gate) DragEnter() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Submitting {
		return
	}
	g.state = Dragging
	g.message = ""
}

// DragLeave clears the hover state.
func (g *Gate) DragLeave() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Dragging {
		g.state = Idle
	}
}

// Select processes a file chosen with the picker.
func (g *Gate) Select(ctx context.Context, file transfer.File) error {
	return g.process(ctx, file)
}

// Drop processes a file dropped onto the region. The drag state ends first.
func (g *Gate) Drop(ctx context.Context, file transfer.File) error {
	g.DragLeave()
	return g.process(ctx, file)
}

func (g *Gate) process(ctx context.Context, file transfer.File) error {
	if closer, ok := file.Body.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	g.mu.Lock()
	if g.state == Submitting {
		g.mu.Unlock()
		log.Printf("[upload] ignoring %q: submission in progress", file.Name)
		return ErrBusy
	}
	g.mu.Unlock()

	file, err := resolveContentType(file)
	if err != nil {
		log.Printf("[upload] failed to read %q: %v", file.Name, err)
		return g.fail(&SubmissionError{Cause: err}, FailureMessage)
	}

	if !Accepts(file.ContentType) {
		return g.fail(&ValidationError{ContentType: file.ContentType, Message: "unsupported file type"}, UnsupportedTypeMessage)
	}

	g.mu.Lock()
	if g.state == Submitting {
		g.mu.Unlock()
		return ErrBusy
	}
	g.state = Submitting
	g.message = ""
	g.mu.Unlock()

	if g.listener != nil {
		g.listener.UploadStarted()
	}

	raw, err := g.submitter.Submit(ctx, file)
	if err != nil {
		log.Printf("[upload] submission of %q failed: %v", file.Name, err)
		return g.fail(&SubmissionError{Cause: err}, FailureMessage)
	}

	if g.listener != nil {
		if err := g.listener.UploadSucceeded(raw); err != nil {
			log.Printf("[upload] response for %q rejected: %v", file.Name, err)
			return g.fail(&SubmissionError{Cause: err}, FailureMessage)
		}
	}

	g.mu.Lock()
	g.state = Idle
	g.message = ""
	g.mu.Unlock()
	return nil
}

func (g *Gate) fail(err error, message string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Error
	g.message = message
	return err
}
