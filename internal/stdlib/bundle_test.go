package stdlib

import (
	"path/filepath"
	"testing"

	"github.com/jlvm/jlvm/internal/eval"
)

func TestLoadPreludeBindsConstants(t *testing.T) {
	s := eval.NewSession()
	if err := LoadPrelude(s); err != nil {
		t.Fatal(err)
	}
	out, err := s.EvalString("test", "pi\n")
	if err != nil {
		t.Fatal(err)
	}
	if got := out.AsFloat64(); got != 3.141592653589793 {
		t.Fatalf("expected pi, got %v", got)
	}
	out, err = s.EvalString("test", "cimag(im_unit)\n")
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64Generic() != 1 {
		t.Fatalf("expected cimag(im_unit) == 1, got %v", out.AsInt64Generic())
	}
}

func TestBundleStoreLoadRoundTrips(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bundle.sqlite")
	b, err := OpenBundle(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if err := b.Store("greeting", "msg = 1\n"); err != nil {
		t.Fatal(err)
	}
	src, ok := b.Load("greeting")
	if !ok {
		t.Fatal("expected greeting to be found")
	}
	if src != "msg = 1\n" {
		t.Fatalf("unexpected source: %q", src)
	}

	if _, ok := b.Load("missing"); ok {
		t.Fatal("expected missing module to be absent")
	}
}

func TestRegistryPrefersBundleOverEmbedded(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bundle.sqlite")
	b, err := OpenBundle(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if err := b.Store("prelude", "pi = 4\n"); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(b)
	s := eval.NewSession()
	if err := r.LoadInto(s, "prelude"); err != nil {
		t.Fatal(err)
	}
	out, err := s.EvalString("test", "pi\n")
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64Generic() != 4 {
		t.Fatalf("expected bundle override pi == 4, got %v", out.AsInt64Generic())
	}
}
