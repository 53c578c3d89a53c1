// Package host is the embedding API for programs that want to run Julia
// source from inside their own Go binary rather than shelling out to
// cmd/jlvm, the same role the teacher's pkg/embed.VM plays for funxy: a
// thin wrapper exposing New/Eval/EvalFile/Get/LoadModule over the interpreter's internal
// packages without requiring the caller to know about internal/parser,
// internal/macro, or internal/interp directly.
package host

import (
	"github.com/pkg/errors"

	"github.com/jlvm/jlvm/internal/eval"
	"github.com/jlvm/jlvm/internal/stdlib"
	"github.com/jlvm/jlvm/internal/value"
)

// Host wraps one eval.Session, the same reusable-instance model the
// teacher's embed.VM wraps around its own vm.VM.
type Host struct {
	session *eval.Session
}

// New creates a Host with the standard prelude already loaded, mirroring
// embed.VM.New's "ready to Eval immediately" contract.
func New() (*Host, error) {
	h := &Host{session: eval.NewSession()}
	if err := stdlib.LoadPrelude(h.session); err != nil {
		return nil, errors.Wrap(err, "loading prelude")
	}
	return h, nil
}

// Eval runs source as one top-level form and returns its last value,
// the embedding surface's equivalent of embed.VM.Eval.
func (h *Host) Eval(source string) (value.Value, error) {
	out, err := h.session.EvalString("<host>", source)
	if err != nil {
		return value.Value{}, errors.Wrap(err, "evaluating source")
	}
	return out, nil
}

// EvalFile runs a file's contents as one top-level form, embed.VM's
// LoadFile counterpart.
func (h *Host) EvalFile(path string) (value.Value, error) {
	out, err := h.session.EvalFile(path)
	if err != nil {
		return value.Value{}, errors.Wrapf(err, "evaluating %s", path)
	}
	return out, nil
}

// Get reads a top-level global by name, erroring if it was never bound.
func (h *Host) Get(name string) (value.Value, error) {
	v, ok := h.session.VM().Globals[name]
	if !ok {
		return value.Value{}, errors.Errorf("undefined global: %s", name)
	}
	return v, nil
}

// LoadModule evaluates a named stdlib module (checked against bundle, the
// embedded source set) into this host's session, for callers that want
// more than the always-on prelude.
func (h *Host) LoadModule(registry *stdlib.Registry, name string) error {
	if err := registry.LoadInto(h.session, name); err != nil {
		return errors.Wrapf(err, "loading module %s", name)
	}
	return nil
}
