package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("unexpected EOF")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodeInvalidInput, "bad run id: %q", "x"), `INVALID_INPUT: bad run id: "x"`},
		{"wrapped", InputLoad(cause, "decode %s", "scan.png"), "INPUT_LOAD: decode scan.png: unexpected EOF"},
		{"hint not shown", Configuration("bad width").WithHint("try 10"), "INVALID_CONFIG: bad width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("permission denied")
	err := InputLoad(cause, "open scan.png")
	if errors.Unwrap(err) != cause || !errors.Is(err, cause) {
		t.Error("InputLoad should wrap its cause")
	}
}

func TestCodeLookup(t *testing.T) {
	nested := Wrap(ErrCodeInputLoad, New(ErrCodeInvalidInput, "inner"), "outer")
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"coded", Configuration("stripe width 7 does not divide 40"), ErrCodeInvalidConfig, "stripe width 7 does not divide 40"},
		{"fmt wrapped", fmt.Errorf("solve: %w", New(ErrCodeNotFound, "run missing")), ErrCodeNotFound, "run missing"},
		{"outermost wins", nested, ErrCodeInputLoad, "outer"},
		{"plain", errors.New("boom"), "", "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}

	if Is(nil, ErrCodeInvalidInput) || Is(errors.New("x"), "") {
		t.Error("Is should be false without a coded error")
	}
}

func TestHintOf(t *testing.T) {
	hinted := Configuration("bad width").WithHint("widths that divide %d: %s", 40, "1, 2, 4")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"direct", hinted, "widths that divide 40: 1, 2, 4"},
		{"fmt wrapped", fmt.Errorf("load: %w", hinted), "widths that divide 40: 1, 2, 4"},
		{"cause hint", Wrap(ErrCodeInternal, hinted, "pipeline"), "widths that divide 40: 1, 2, 4"},
		{"none", New(ErrCodeInvalidInput, "bad"), ""},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HintOf(tt.err); got != tt.want {
				t.Errorf("HintOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"configuration", Configuration("bad width"), true},
		{"input load", InputLoad(errors.New("eof"), "decode"), true},
		{"wrapped configuration", fmt.Errorf("load: %w", Configuration("bad width")), true},
		{"invalid input", New(ErrCodeInvalidInput, "bad id"), false},
		{"plain", errors.New("plain"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal() = %v, want %v", got, tt.want)
			}
		})
	}
}
