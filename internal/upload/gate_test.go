package upload

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume2portfolio/internal/transfer"
)

// fakeSubmitter records calls and returns canned results.
type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []transfer.File
	raw     transfer.RawSubmission
	err     error
	release chan struct{} // when set, Submit blocks until closed
	entered chan struct{}
}

func (f *fakeSubmitter) Submit(_ context.Context, file transfer.File) (transfer.RawSubmission, error) {
	f.mu.Lock()
	f.calls = append(f.calls, file)
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	return f.raw, f.err
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recordingListener tracks the order of signals.
type recordingListener struct {
	mu        sync.Mutex
	events    []string
	raw       transfer.RawSubmission
	rejectErr error
}

func (l *recordingListener) UploadStarted() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, "started")
}

func (l *recordingListener) UploadSucceeded(raw transfer.RawSubmission) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, "succeeded")
	l.raw = raw
	return l.rejectErr
}

func pdfFile() transfer.File {
	return transfer.File{Name: "resume.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF-1.4")}
}

func TestGate_InitialState(t *testing.T) {
	g := NewGate(&fakeSubmitter{}, nil)
	assert.Equal(t, Status{State: Idle}, g.Status())
}

func TestGate_DragTransitions(t *testing.T) {
	g := NewGate(&fakeSubmitter{}, nil)

	g.DragEnter()
	assert.Equal(t, Dragging, g.Status().State)

	g.DragEnter()
	assert.Equal(t, Dragging, g.Status().State)

	g.DragLeave()
	assert.Equal(t, Idle, g.Status().State)

	g.DragLeave()
	assert.Equal(t, Idle, g.Status().State)
}

func TestGate_Select_Success(t *testing.T) {
	sub := &fakeSubmitter{raw: transfer.RawSubmission(`{"file_id":"abc"}`)}
	lis := &recordingListener{}
	g := NewGate(sub, lis)

	err := g.Select(context.Background(), pdfFile())
	require.NoError(t, err)

	assert.Equal(t, []string{"started", "succeeded"}, lis.events)
	assert.Equal(t, `{"file_id":"abc"}`, string(lis.raw))
	assert.Equal(t, Status{State: Idle}, g.Status())
	assert.Equal(t, 1, sub.callCount())
}

func TestGate_Drop_ClearsDragAndSubmits(t *testing.T) {
	sub := &fakeSubmitter{raw: transfer.RawSubmission(`{}`)}
	lis := &recordingListener{}
	g := NewGate(sub, lis)

	g.DragEnter()
	err := g.Drop(context.Background(), transfer.File{Name: "scan.png", ContentType: "image/png", Body: strings.NewReader("x")})
	require.NoError(t, err)

	assert.Equal(t, Idle, g.Status().State)
	assert.Equal(t, []string{"started", "succeeded"}, lis.events)
}

func TestGate_UnsupportedTypeNeverSubmits(t *testing.T) {
	sub := &fakeSubmitter{}
	lis := &recordingListener{}
	g := NewGate(sub, lis)

	err := g.Select(context.Background(), transfer.File{Name: "notes.txt", ContentType: "text/plain", Body: strings.NewReader("hello")})
	require.Error(t, err)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, sub.callCount())
	assert.Empty(t, lis.events)
	assert.Equal(t, Status{State: Error, Message: UnsupportedTypeMessage}, g.Status())
}

func TestGate_SubmitFailureIsGeneric(t *testing.T) {
	cause := &transfer.ServerError{URL: "http://backend/api/upload", Status: 500, Body: "secret stack trace"}
	sub := &fakeSubmitter{err: cause}
	lis := &recordingListener{}
	g := NewGate(sub, lis)

	err := g.Select(context.Background(), pdfFile())
	require.Error(t, err)

	var serverErr *transfer.ServerError
	assert.ErrorAs(t, err, &serverErr)
	assert.Equal(t, []string{"started"}, lis.events)

	status := g.Status()
	assert.Equal(t, Error, status.State)
	assert.Equal(t, FailureMessage, status.Message)
	assert.NotContains(t, status.Message, "secret")
}

func TestGate_RejectedResponseLooksLikeServerError(t *testing.T) {
	sub := &fakeSubmitter{raw: transfer.RawSubmission(`{"data":{}}`)}
	lis := &recordingListener{rejectErr: errors.New("no identifier")}
	g := NewGate(sub, lis)

	err := g.Select(context.Background(), pdfFile())
	require.Error(t, err)

	var submissionErr *SubmissionError
	assert.ErrorAs(t, err, &submissionErr)
	assert.Equal(t, Status{State: Error, Message: FailureMessage}, g.Status())
}

func TestGate_RetryAfterError(t *testing.T) {
	sub := &fakeSubmitter{raw: transfer.RawSubmission(`{}`)}
	g := NewGate(sub, &recordingListener{})

	require.Error(t, g.Select(context.Background(), transfer.File{Name: "a.txt", ContentType: "text/plain"}))
	assert.Equal(t, Error, g.Status().State)

	require.NoError(t, g.Select(context.Background(), pdfFile()))
	assert.Equal(t, Status{State: Idle}, g.Status())
}

func TestGate_ConcurrentSelectIgnored(t *testing.T) {
	sub := &fakeSubmitter{
		raw:     transfer.RawSubmission(`{}`),
		release: make(chan struct{}),
		entered: make(chan struct{}),
	}
	g := NewGate(sub, &recordingListener{})

	done := make(chan error, 1)
	go func() {
		done <- g.Select(context.Background(), pdfFile())
	}()
	<-sub.entered

	assert.Equal(t, Submitting, g.Status().State)

	err := g.Drop(context.Background(), pdfFile())
	assert.ErrorIs(t, err, ErrBusy)

	g.DragEnter()
	assert.Equal(t, Submitting, g.Status().State)

	close(sub.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, sub.callCount())
	assert.Equal(t, Idle, g.Status().State)
}

func TestGate_SniffsMissingContentType(t *testing.T) {
	sub := &fakeSubmitter{raw: transfer.RawSubmission(`{}`)}
	g := NewGate(sub, &recordingListener{})

	body := "%PDF-1.7\n" + strings.Repeat("x", 5000)
	err := g.Select(context.Background(), transfer.File{Name: "resume", ContentType: "", Body: strings.NewReader(body)})
	require.NoError(t, err)

	require.Equal(t, 1, sub.callCount())
	assert.Equal(t, "application/pdf", sub.calls[0].ContentType)
}

func TestGate_ClosesBody(t *testing.T) {
	body := &closeTracker{Reader: strings.NewReader("%PDF-1.4")}
	g := NewGate(&fakeSubmitter{raw: transfer.RawSubmission(`{}`)}, nil)

	require.NoError(t, g.Select(context.Background(), transfer.File{Name: "r.pdf", ContentType: "application/pdf", Body: body}))
	assert.True(t, body.closed)
}

type closeTracker struct {
	*strings.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/pdf", true},
		{"image/png", true},
		{"image/jpeg", true},
		{"text/plain", false},
		{"application/msword", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, Accepts(tt.contentType))
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "dragging", Dragging.String())
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "error", Error.String())
}
