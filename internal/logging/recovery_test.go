package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestRecoveryHandler_NoPanic(t *testing.T) {
	handler := NewRecoveryHandler("test-component")
	called := false
	handler.OnPanic = func(interface{}, string) { called = true }

	func() {
		defer handler.Recover()
	}()

	if called {
		t.Error("OnPanic should not run without a panic")
	}
}

func TestRecoveryHandler_Recover(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	handler := NewRecoveryHandler("cli")

	var capturedErr interface{}
	var capturedStack string
	handler.OnPanic = func(err interface{}, stack string) {
		capturedErr = err
		capturedStack = stack
	}

	func() {
		defer handler.Recover()
		panic("test panic")
	}()

	if capturedErr != "test panic" {
		t.Errorf("expected 'test panic', got %v", capturedErr)
	}
	if !strings.Contains(capturedStack, "TestRecoveryHandler_Recover") {
		t.Error("stack trace should contain test function name")
	}
	out := buf.String()
	if !strings.Contains(out, "panic_recovered") || !strings.Contains(out, `"component":"cli"`) {
		t.Errorf("expected panic_recovered event for 'cli', got %q", out)
	}
}

func TestRecoveryHandler_RuntimeError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	handler := NewRecoveryHandler("cli")
	var got interface{}
	handler.OnPanic = func(err interface{}, _ string) { got = err }

	func() {
		defer handler.Recover()
		var m map[string]int
		m["x"] = 1
	}()

	if got == nil {
		t.Fatal("expected OnPanic to receive the runtime error")
	}
	if !strings.Contains(buf.String(), "assignment to entry in nil map") {
		t.Errorf("expected runtime error in log, got %q", buf.String())
	}
}
