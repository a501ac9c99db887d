package errors

import (
	"errors"
	"fmt"
	"testing"
)

// -----------------------------------------------------------------------------
// NotFoundError Tests
// -----------------------------------------------------------------------------

func TestNotFoundError(t *testing.T) {
	err := SliceNotFound("s-1")

	if got, want := err.Error(), "slice 's-1' not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false, want true")
	}
	if !errors.Is(err, ErrSliceNotFound) {
		t.Error("errors.Is(err, ErrSliceNotFound) = false, want true")
	}
	if errors.Is(err, ErrTaskNotFound) {
		t.Error("errors.Is(err, ErrTaskNotFound) = true, want false")
	}
	if !IsUserFacing(err) {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestNotFoundError_Wrapped(t *testing.T) {
	err := fmt.Errorf("patch task: %w", TaskNotFound("t-9"))

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("errors.As(*NotFoundError) = false, want true")
	}
	if nf.ResourceType != "task" || nf.ResourceID != "t-9" {
		t.Errorf("got %s/%s, want task/t-9", nf.ResourceType, nf.ResourceID)
	}
}

// -----------------------------------------------------------------------------
// ValidationError Tests
// -----------------------------------------------------------------------------

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "message only",
			err:  NewValidationError("title is required"),
			want: "validation error: title is required",
		},
		{
			name: "with field",
			err:  NewValidationError("title is required").WithField("title"),
			want: "validation error [field=title]: title is required",
		},
		{
			name: "with field and value",
			err:  NewValidationError("must be between 1 and 5").WithField("importance").WithValue(9),
			want: "validation error [field=importance, value=9]: must be between 1 and 5",
		},
		{
			name: "with cause",
			err:  NewValidationError("unknown category").WithCause(ErrUnsupportedCategory),
			want: "validation error: unknown category: unsupported category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Is(t *testing.T) {
	err := NewValidationError("unknown category").WithCause(ErrUnsupportedCategory)

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("errors.Is(err, ErrInvalidInput) = false, want true")
	}
	if !errors.Is(err, ErrUnsupportedCategory) {
		t.Error("errors.Is(err, ErrUnsupportedCategory) = false, want true")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = true, want false")
	}
}

// -----------------------------------------------------------------------------
// TransitionError Tests
// -----------------------------------------------------------------------------

func TestTransitionError(t *testing.T) {
	err := NewTransitionError("s-1", "done", "skip")

	if got, want := err.Error(), "cannot skip slice s-1 in status done: invalid status transition"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Error("errors.Is(err, ErrInvalidTransition) = false, want true")
	}
	if !IsUserFacing(err) {
		t.Error("IsUserFacing() = false, want true")
	}
}

// -----------------------------------------------------------------------------
// StoreError Tests
// -----------------------------------------------------------------------------

func TestStoreError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStoreError("append slices", cause).WithBackend("file")

	if got, want := err.Error(), "store error [backend=file]: append slices: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if IsUserFacing(err) {
		t.Error("IsUserFacing() = true, want false")
	}
	if IsRetryable(err) {
		t.Error("IsRetryable() = true, want false")
	}
	if !IsRetryable(err.WithRetryable(true)) {
		t.Error("IsRetryable() after WithRetryable(true) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestClassification_PlainErrors(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRetryable bool
		wantUser      bool
	}{
		{"nil", nil, false, false},
		{"plain", errors.New("boom"), false, false},
		{"store unavailable sentinel", Wrap(ErrStoreUnavailable, "open"), true, false},
		{"wrapped validation", Wrap(NewValidationError("bad"), "capture"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.wantRetryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.wantRetryable)
			}
			if got := IsUserFacing(tt.err); got != tt.wantUser {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.wantUser)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if Wrapf(nil, "ctx %d", 1) != nil {
		t.Error("Wrapf(nil) should be nil")
	}

	err := Wrapf(ErrSliceNotFound, "act on %s", "s-1")
	if got, want := err.Error(), "act on s-1: slice not found"; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrSliceNotFound) {
		t.Error("Wrapf should preserve the chain")
	}
}
