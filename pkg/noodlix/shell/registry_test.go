package shell

import (
	"context"
	"reflect"
	"testing"

	errs "github.com/jmgilman/go/errors"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
)

func noop(ctx context.Context, inv Invocation) (Result, error) { return Output(), nil }

func TestNewRegistry(t *testing.T) {
	t.Run("Keeps registration order", func(t *testing.T) {
		reg, err := NewRegistry(
			Command{Name: "zeta", Handler: noop},
			Command{Name: "alpha", Handler: noop},
			Command{Name: "mid", Handler: noop},
		)
		if err != nil {
			t.Fatalf("NewRegistry failed: %v", err)
		}
		if got := reg.Names(); !reflect.DeepEqual(got, []string{"zeta", "alpha", "mid"}) {
			t.Errorf("Unexpected order %v", got)
		}
		if reg.Len() != 3 {
			t.Errorf("Expected 3 commands, got %d", reg.Len())
		}
	})

	t.Run("Lookup", func(t *testing.T) {
		reg, _ := NewRegistry(Command{Name: "ls", Usage: "[-la]", Handler: noop})
		cmd, ok := reg.Lookup("ls")
		if !ok || cmd.Usage != "[-la]" {
			t.Errorf("Unexpected lookup result %+v, %v", cmd, ok)
		}
		if _, ok := reg.Lookup("LS"); ok {
			t.Error("Lookup must be exact")
		}
	})

	tests := []struct {
		name string
		cmds []Command
		code errs.ErrorCode
	}{
		{"empty name", []Command{{Name: "", Handler: noop}}, errs.CodeInvalidInput},
		{"no handler", []Command{{Name: "x"}}, errs.CodeInvalidInput},
		{"duplicate", []Command{{Name: "x", Handler: noop}, {Name: "x", Handler: noop}}, core.CodeAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.cmds...)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if core.CodeOf(err) != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, core.CodeOf(err))
			}
		})
	}
}
