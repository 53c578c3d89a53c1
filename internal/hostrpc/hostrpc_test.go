package hostrpc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jlvm/jlvm/internal/heap"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

const personProto = `
syntax = "proto3";
package sample;

message Person {
  string name = 1;
  int32 age = 2;
}
`

func writeProto(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "person.proto")
	if err := os.WriteFile(path, []byte(personProto), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

var personType = types.NewConcrete("Person", types.Any, []string{"name", "age"}, nil, false)

func TestEncodeDecodeRoundTrips(t *testing.T) {
	path := writeProto(t)
	if err := LoadProto(path); err != nil {
		t.Fatal(err)
	}

	s := heap.NewStruct(personType, []value.Value{
		value.Obj(value.NewString("Ada")),
		value.Int64(37),
	})

	data, err := Encode("sample.Person", s)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty wire bytes")
	}

	decoded, err := Decode("sample.Person", data, personType, []string{"name", "age"})
	if err != nil {
		t.Fatal(err)
	}
	name, _ := decoded.GetField("name")
	age, _ := decoded.GetField("age")
	if value.Show(name) != `"Ada"` {
		t.Fatalf("expected name Ada, got %s", value.Show(name))
	}
	if age.AsInt64Generic() != 37 {
		t.Fatalf("expected age 37, got %d", age.AsInt64Generic())
	}
}

func TestDecodeUnknownMessageErrors(t *testing.T) {
	path := writeProto(t)
	if err := LoadProto(path); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode("sample.DoesNotExist", []byte{}, personType, nil); err == nil {
		t.Fatal("expected an error for an unregistered message name")
	}
}

func TestFindMethodRejectsMalformedPath(t *testing.T) {
	if _, err := findMethod("no-slash-here"); err == nil {
		t.Fatal("expected an error for a path with no service/method separator")
	}
}
