package bomerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		wantIs   bool
		wantCode Code
	}{
		{
			name:     "invalid argument matches sentinel",
			err:      InvalidArgument("level key %q not found", "level"),
			target:   ErrInvalidArgument,
			wantIs:   true,
			wantCode: CodeInvalidArgument,
		},
		{
			name:     "wrapped invalid argument still matches",
			err:      fmt.Errorf("fold: %w", InvalidArgument("bad row")),
			target:   ErrInvalidArgument,
			wantIs:   true,
			wantCode: CodeInvalidArgument,
		},
		{
			name:     "unimplemented does not match invalid argument",
			err:      Unimplemented("absolute"),
			target:   ErrInvalidArgument,
			wantIs:   false,
			wantCode: CodeUnimplemented,
		},
		{
			name:     "plain error has unknown code",
			err:      errors.New("boom"),
			target:   ErrUnimplemented,
			wantIs:   false,
			wantCode: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantIs {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantIs)
			}
			if got := CodeOf(tt.err); got != tt.wantCode {
				t.Errorf("CodeOf() = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := InvalidArgument("level key %q not found", "level")
	want := `INVALID_ARGUMENT: level key "level" not found`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if got := ErrUnimplemented.Error(); got != "UNIMPLEMENTED" {
		t.Errorf("Error() = %q, want %q", got, "UNIMPLEMENTED")
	}
}
