package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:     PhaseDecode,
				Kind:      KindInvalidConstantKind,
				Path:      []string{"Module", "requires", "0", "module"},
				Offset:    10,
				HasOffset: true,
				Expected:  "Module",
				Actual:    "Utf8",
				Detail:    "index 3",
			},
			contains: []string{"[decode]", "invalid_constant_kind", "Module.requires.0.module", "offset 10", "expected Module, got Utf8", "index 3"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseBuild,
				Kind:  KindMissingRequiredField,
			},
			contains: []string{"[build]", "missing_required_field"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindIntegrity,
				Detail: "digest mismatch",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "integrity", "digest mismatch", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_NoOffset(t *testing.T) {
	err := &Error{Phase: PhaseDecode, Kind: KindMalformedAttribute, Offset: 0}
	if strings.Contains(err.Error(), "offset") {
		t.Errorf("offset should only be printed when set: %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindOverflow,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindMalformedAttribute,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindMalformedAttribute}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseValidate, Kind: KindMalformedAttribute}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseDecode, Kind: KindInvalidConstantKind}) {
		t.Error("Is should not match different kind")
	}

	if !errors.Is(err, ErrMalformedAttribute) {
		t.Error("errors.Is should match the phase-less sentinel")
	}
	if errors.Is(err, ErrInvalidConstantKind) {
		t.Error("errors.Is should not match a different sentinel")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDecode, KindInvalidConstantKind).
		Path("Module", "uses", "2").
		Offset(31).
		Expected("Class").
		Actual("Package").
		Value(uint16(7)).
		Cause(cause).
		Detail("index %d", 7).
		Build()

	if err.Phase != PhaseDecode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDecode)
	}
	if err.Kind != KindInvalidConstantKind {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidConstantKind)
	}
	if len(err.Path) != 3 || err.Path[1] != "uses" {
		t.Errorf("Path = %v, want [Module uses 2]", err.Path)
	}
	if !err.HasOffset || err.Offset != 31 {
		t.Errorf("Offset = %d (set=%v), want 31", err.Offset, err.HasOffset)
	}
	if err.Expected != "Class" || err.Actual != "Package" {
		t.Errorf("Expected=%q Actual=%q", err.Expected, err.Actual)
	}
	if err.Value != uint16(7) {
		t.Errorf("Value = %v, want 7", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "index 7" {
		t.Errorf("Detail = %v, want 'index 7'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Malformed", func(t *testing.T) {
		err := Malformed([]string{"Module"}, 12, "trailing bytes")
		if err.Kind != KindMalformedAttribute || err.Phase != PhaseDecode {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if !err.HasOffset || err.Offset != 12 {
			t.Errorf("Offset = %d, want 12", err.Offset)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		err := Truncated([]string{"Module", "exports"}, 20, 6, 2)
		if err.Kind != KindMalformedAttribute {
			t.Errorf("Kind = %v, want %v", err.Kind, KindMalformedAttribute)
		}
		if err.Expected != "6 bytes" || err.Actual != "2 bytes" {
			t.Errorf("Expected=%q Actual=%q", err.Expected, err.Actual)
		}
	})

	t.Run("ConstantKind", func(t *testing.T) {
		err := ConstantKind(PhaseBuild, []string{"uses"}, "Class", "Utf8")
		if !errors.Is(err, ErrInvalidConstantKind) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidConstantKind)
		}
	})

	t.Run("FieldMissing", func(t *testing.T) {
		err := FieldMissing(PhaseBuild, nil, "module_name")
		if !errors.Is(err, ErrMissingRequiredField) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindMissingRequiredField)
		}
		if !strings.Contains(err.Detail, "module_name") {
			t.Errorf("Detail = %q, should name the field", err.Detail)
		}
	})

	t.Run("AlreadyBuilt", func(t *testing.T) {
		err := AlreadyBuilt("AddUse")
		if !errors.Is(err, ErrBuilderAlreadyBuilt) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBuilderAlreadyBuilt)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseResolve, "constant index", 99)
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if err.Value != 99 {
			t.Errorf("Value = %v, want 99", err.Value)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseEncode, []string{"requires"}, 70000, "u16")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("eof")
		err := Wrap(PhaseLoad, KindInvalidInput, cause, "read bundle")
		if !errors.Is(err, cause) {
			t.Error("Wrap should keep the cause in the chain")
		}
	})
}
