package host

import "testing"

func TestHostEvalArithmetic(t *testing.T) {
	h, err := New()
	if err != nil {
		t.Fatal(err)
	}
	out, err := h.Eval("1 + 2 * 3\n")
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64Generic() != 7 {
		t.Fatalf("expected 7, got %v", out.AsInt64Generic())
	}
}

func TestHostGetReadsPreludeConstant(t *testing.T) {
	h, err := New()
	if err != nil {
		t.Fatal(err)
	}
	v, err := h.Get("pi")
	if err != nil {
		t.Fatal(err)
	}
	if got := v.AsFloat64(); got != 3.141592653589793 {
		t.Fatalf("expected pi, got %v", got)
	}
}

func TestHostGetUndefinedErrors(t *testing.T) {
	h, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Get("not_a_thing"); err == nil {
		t.Fatal("expected an error for an undefined global")
	}
}
