package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "PredictBatch")
		panic("feature adapter exploded")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "PredictBatch" {
		t.Errorf("Expected operation 'PredictBatch', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if got, want := panicErr.Error(), "panic in PredictBatch: feature adapter exploded"; got != want {
		t.Errorf("Expected error message '%s', got '%s'", want, got)
	}
	if !strings.Contains(panicErr.String(), "Stack trace:") {
		t.Error("String() should include stack trace information")
	}
}

// TestRecover_WithoutPanic tests the Recover function when no panic occurs
func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "PredictBatch")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

// TestRecover_WithExistingError keeps the original error as the cause
func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "PredictBatch")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "panic in PredictBatch") {
		t.Errorf("Error message should contain panic info: %s", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("Should be able to identify original error with errors.Is")
	}
}

func TestSafeExecute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		if err := SafeExecute("op", func() error { return nil }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("function error passes through", func(t *testing.T) {
		want := fmt.Errorf("function error")
		if err := SafeExecute("op", func() error { return want }); err != want {
			t.Fatalf("Expected original error, got: %v", err)
		}
	})

	t.Run("panic becomes PanicError", func(t *testing.T) {
		err := SafeExecute("op", func() error {
			var m map[string]int
			m["x"] = 1
			return nil
		})
		var panicErr *PanicError
		if !errors.As(err, &panicErr) {
			t.Fatalf("Expected PanicError, got %T", err)
		}
	})
}
