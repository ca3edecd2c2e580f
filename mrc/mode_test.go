package mrc

import (
	"errors"
	"testing"
)

func TestResolveMode(t *testing.T) {
	tests := []struct {
		code  int32
		kind  ElementKind
		mult  int
		width int
	}{
		{ModeInt8, Int8, 1, 1},
		{ModeInt16, Int16, 1, 2},
		{ModeFloat32, Float32, 1, 4},
		{ModeComplexInt16, Int16, 2, 2},
		{ModeComplexFloat32, Float32, 2, 4},
		{ModeUint16, Uint16, 1, 2},
		{ModeInt32, Int32, 1, 4},
		{ModeRGB, Uint8, 3, 1},
	}

	for _, tt := range tests {
		f, err := ResolveMode(tt.code)
		if err != nil {
			t.Errorf("ResolveMode(%d): %v", tt.code, err)
			continue
		}
		if f.Kind != tt.kind {
			t.Errorf("mode %d kind = %s, want %s", tt.code, f.Kind, tt.kind)
		}
		if f.Multiplicity != tt.mult {
			t.Errorf("mode %d multiplicity = %d, want %d", tt.code, f.Multiplicity, tt.mult)
		}
		if f.ElementBytes() != tt.width {
			t.Errorf("mode %d element bytes = %d, want %d", tt.code, f.ElementBytes(), tt.width)
		}
		if f.PixelBytes() != tt.width*tt.mult {
			t.Errorf("mode %d pixel bytes = %d", tt.code, f.PixelBytes())
		}
	}
}

func TestResolveModeUnsupported(t *testing.T) {
	_, err := ResolveMode(99)
	var uerr *UnsupportedError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnsupportedError, got %v", err)
	}
	// The offending code must be named, and the error must not be a
	// format error: the file is well-formed, just not implemented.
	if uerr.Feature != "mode 99" {
		t.Errorf("feature = %q", uerr.Feature)
	}
	var ferr *FormatError
	if errors.As(err, &ferr) {
		t.Error("unsupported mode must not be a FormatError")
	}
}

func TestPixelFormatVendorAnnotation(t *testing.T) {
	f, err := ResolveMode(ModeRGB)
	if err != nil {
		t.Fatal(err)
	}
	if f.Vendor != "IMOD" {
		t.Errorf("vendor = %q", f.Vendor)
	}

	f, err = ResolveMode(ModeFloat32)
	if err != nil {
		t.Fatal(err)
	}
	if f.Vendor != "" {
		t.Errorf("core mode carries vendor %q", f.Vendor)
	}
}

func TestIsComplex(t *testing.T) {
	for _, code := range []int32{ModeComplexInt16, ModeComplexFloat32} {
		f, _ := ResolveMode(code)
		if !f.IsComplex() {
			t.Errorf("mode %d should be complex", code)
		}
	}
	f, _ := ResolveMode(ModeInt16)
	if f.IsComplex() {
		t.Error("mode 1 should not be complex")
	}
}
