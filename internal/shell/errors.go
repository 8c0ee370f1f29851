package shell

import "errors"

// ErrPreviewActive is returned for uploads attempted while a profile is shown.
// Reset is the only way back to intake.
var ErrPreviewActive = errors.New("preview active: reset before uploading again")

// ErrSubmitting is returned by Reset while an upload is in flight.
var ErrSubmitting = errors.New("upload in progress: reset is unavailable until it completes")
