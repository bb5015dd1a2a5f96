package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidDocument, "state %q is malformed", "S3")

	if err.Code != ErrCodeInvalidDocument {
		t.Errorf("Code = %s", err.Code)
	}
	if err.Message != `state "S3" is malformed` {
		t.Errorf("Message = %s", err.Message)
	}
	if !strings.Contains(err.Error(), "INVALID_DOCUMENT") {
		t.Errorf("Error() should contain the code: %s", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("unexpected end of JSON input")
	err := Wrap(ErrCodeInvalidDocument, cause, "decode document")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
	if !strings.Contains(err.Error(), cause.Error()) {
		t.Errorf("Error() should include the cause: %s", err.Error())
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeFileNotFound, "no such document")

	if !Is(err, ErrCodeFileNotFound) {
		t.Error("Is() should match the error's own code")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is() should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeInternal) {
		t.Error("Is() should not match plain errors")
	}
	if Is(nil, ErrCodeInternal) {
		t.Error("Is(nil) should be false")
	}

	// Codes survive fmt.Errorf wrapping.
	wrapped := fmt.Errorf("while converting: %w", err)
	if !Is(wrapped, ErrCodeFileNotFound) {
		t.Error("Is() should unwrap nested errors")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeUnsupported, "no")); got != ErrCodeUnsupported {
		t.Errorf("GetCode = %s", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode of plain error = %s, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeMissingStartState, "document has no startingState key")
	if got := UserMessage(err); got != "document has no startingState key" {
		t.Errorf("UserMessage = %s", got)
	}

	plain := stderrors.New("boom")
	if got := UserMessage(plain); got != "boom" {
		t.Errorf("UserMessage of plain error = %s", got)
	}
}

func TestValidateStateID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"Simple", "S0", true},
		{"Unicode", "état-final", true},
		{"Spaces", "state one", true},
		{"MaxLength", strings.Repeat("a", 256), true},
		{"Empty", "", false},
		{"TooLong", strings.Repeat("a", 257), false},
		{"ControlChar", "S\x000", false},
		{"Newline", "S\n0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStateID(tt.id)
			if tt.valid && err != nil {
				t.Errorf("ValidateStateID(%q) = %v, want nil", tt.id, err)
			}
			if !tt.valid {
				if !Is(err, ErrCodeInvalidDocument) {
					t.Errorf("ValidateStateID(%q) = %v, want INVALID_DOCUMENT", tt.id, err)
				}
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		valid bool
	}{
		{"Relative", "out/result.dfa.json", true},
		{"Absolute", "/tmp/result.svg", true},
		{"Empty", "", false},
		{"NullByte", "out\x00.json", false},
		{"ControlChar", "out\x07.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.path)
			if tt.valid && err != nil {
				t.Errorf("ValidateOutputPath(%q) = %v, want nil", tt.path, err)
			}
			if !tt.valid && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateOutputPath(%q) = %v, want INVALID_INPUT", tt.path, err)
			}
		})
	}
}
