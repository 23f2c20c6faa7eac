//go:build !amd64

package hashx

import (
	"errors"
	"testing"
)

func TestCompileUnavailableOffAmd64(t *testing.T) {
	if Supported() {
		t.Fatal("Supported() = true on a non-amd64 build")
	}

	prog := &Program{}
	_, err := Compile(prog)
	if !errors.Is(err, ErrCompileUnavailable) {
		t.Fatalf("Compile error = %v, want ErrCompileUnavailable", err)
	}
}

func TestConfigValidateRejectsCompiledOffAmd64(t *testing.T) {
	cfg := Config{Type: Compiled}
	if err := cfg.Validate(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Validate() error = %v, want ErrUnsupported", err)
	}
}
