package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		wantMsg  string
	}{
		{
			name:     "truncated",
			err:      NewTruncatedError("ReadInt32", 12, 4, 1),
			sentinel: ErrTruncated,
			wantMsg:  "xgbpredictor: ReadInt32: truncated at offset 12: want 4 bytes, got 1",
		},
		{
			name:     "unsupported booster",
			err:      NewUnsupportedBoosterError("gbforest"),
			sentinel: ErrUnsupportedBooster,
			wantMsg:  `xgbpredictor: unsupported booster kind "gbforest"`,
		},
		{
			name:     "unsupported objective",
			err:      NewUnsupportedObjectiveError("survival:cox"),
			sentinel: ErrUnsupportedObjective,
			wantMsg:  `xgbpredictor: unsupported objective "survival:cox"`,
		},
		{
			name:     "invalid utf-8",
			err:      NewInvalidUTF8Error("ReadString", 3),
			sentinel: ErrInvalidUTF8,
			wantMsg:  "xgbpredictor: ReadString: 3-byte string is not valid utf-8",
		},
		{
			name:     "structural",
			err:      NewStructuralErrorf("RegTree.LeafIndex", "traversal exceeded %d steps", 7),
			sentinel: ErrStructural,
			wantMsg:  "xgbpredictor: RegTree.LeafIndex: traversal exceeded 7 steps",
		},
		{
			name:     "unsupported format",
			err:      NewUnsupportedFormatError("xgboost4j-spark"),
			sentinel: ErrUnsupportedFormat,
			wantMsg:  "xgbpredictor: unsupported model format: xgboost4j-spark",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", tt.err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", tt.err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			if !Is(tt.err, tt.sentinel) {
				t.Errorf("Is(err, %v) = false", tt.sentinel)
			}

			wrapped := Wrap(tt.err, "loading model")
			if !Is(wrapped, tt.sentinel) {
				t.Error("sentinel should survive wrapping")
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	err := NewTruncatedError("ReadFloat32", 0, 4, 0)
	if Is(err, ErrStructural) {
		t.Error("truncated error must not match ErrStructural")
	}

	var truncated *TruncatedError
	if !As(Wrapf(err, "reading tree %d", 3), &truncated) {
		t.Fatal("Error should be castable to *TruncatedError")
	}
	if truncated.Offset != 0 || truncated.Want != 4 {
		t.Errorf("unexpected fields: %+v", truncated)
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("workers", "must be non-negative", -2)

	want := "xgbpredictor: validation failed for parameter 'workers': must be non-negative (got: -2)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Error("Error should be castable to *ValidationError")
	}
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var structural *StructuralError
	if !As(NewStructuralError("GBLinear.PredictLeaf", "no leaf structure"), &structural) {
		t.Fatal("expected *StructuralError")
	}
	logger.Error().EmbedObject(structural).Msg("predict failed")

	out := buf.String()
	for _, want := range []string{`"type":"StructuralError"`, `"operation":"GBLinear.PredictLeaf"`, `"reason":"no leaf structure"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %s missing %s", out, want)
		}
	}
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(nil)

	Warn(NewDecodeWarning("GBLinear.Read", "weight count prefix 9 disagrees with shape 6"))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	var dw *DecodeWarning
	if !As(got[0], &dw) || dw.Op != "GBLinear.Read" {
		t.Errorf("unexpected warning %v", got[0])
	}
}

func TestWarnPrefersZerolog(t *testing.T) {
	var handlerCalls, zerologCalls int
	SetWarningHandler(func(error) { handlerCalls++ })
	SetZerologWarnFunc(func(error) { zerologCalls++ })
	defer func() {
		SetZerologWarnFunc(nil)
		SetWarningHandler(nil)
	}()

	Warn(NewDecodeWarning("op", "msg"))

	if zerologCalls != 1 || handlerCalls != 0 {
		t.Errorf("zerolog=%d handler=%d, want 1/0", zerologCalls, handlerCalls)
	}
}
