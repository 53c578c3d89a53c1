// Package hostrpc backs SPEC_FULL §6.4's protobuf/gRPC interop surface:
// loading a .proto file's message/service descriptors at runtime, encoding
// a Julia Struct into a protobuf wire message and back, and invoking a
// remote gRPC method by fully-qualified path. Grounded directly on the
// teacher's internal/evaluator/builtins_grpc.go — the proto registry,
// dynamic.Message round-trip, and grpc.ClientConn.Invoke call are the same
// shape, adapted from Funxy's own Object tree onto heap.Struct/value.Value.
package hostrpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jlvm/jlvm/internal/heap"
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]*desc.FileDescriptor{}
)

// LoadProto parses a .proto source file and registers every message/service
// it declares, keyed by fully-qualified name ("package.Message"), the same
// global-registry-by-name shape the teacher's protoRegistry uses.
func LoadProto(path string) error {
	parser := protoparse.Parser{ImportPaths: []string{"."}}
	fds, err := parser.ParseFiles(path)
	if err != nil {
		return jlerror.NewLoadError(path, err)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, fd := range fds {
		for _, md := range fd.GetMessageTypes() {
			registry[md.GetFullyQualifiedName()] = fd
		}
		for _, sd := range fd.GetServices() {
			registry[sd.GetFullyQualifiedName()] = fd
		}
	}
	return nil
}

func findMessage(name string) (*desc.MessageDescriptor, error) {
	registryMu.RLock()
	fd, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, jlerror.NewArgumentError("unknown protobuf message: " + name)
	}
	md := fd.FindMessage(name)
	if md == nil {
		return nil, jlerror.NewArgumentError("unknown protobuf message: " + name)
	}
	return md, nil
}

func findMethod(path string) (*desc.MethodDescriptor, error) {
	// path is "package.Service/Method"; split on the last '/'.
	slash := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			slash = i
			break
		}
	}
	if slash < 0 {
		return nil, jlerror.NewArgumentError("malformed method path: " + path)
	}
	serviceName, methodName := path[:slash], path[slash+1:]
	registryMu.RLock()
	fd, ok := registry[serviceName]
	registryMu.RUnlock()
	if !ok {
		return nil, jlerror.NewArgumentError("unknown service: " + serviceName)
	}
	sd := fd.FindService(serviceName)
	if sd == nil {
		return nil, jlerror.NewArgumentError("unknown service: " + serviceName)
	}
	md := sd.FindMethodByName(methodName)
	if md == nil {
		return nil, jlerror.NewArgumentError("unknown method: " + path)
	}
	return md, nil
}

// structToMessage copies a Julia Struct's fields into a freshly constructed
// dynamic.Message for md, field-by-field by name (scalar fields only, this
// subset's supported wire shape).
func structToMessage(s *heap.Struct, md *desc.MessageDescriptor) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(md)
	for _, fd := range md.GetFields() {
		v, err := s.GetField(fd.GetName())
		if err != nil {
			continue // field absent on the Julia side: leave at proto zero value
		}
		if err := msg.SetField(fd, scalarToGo(v)); err != nil {
			return nil, jlerror.NewArgumentError("field " + fd.GetName() + ": " + err.Error())
		}
	}
	return msg, nil
}

// messageToStruct is the inverse: build a Julia Struct of structType from a
// decoded dynamic.Message.
func messageToStruct(msg *dynamic.Message, structType *types.DataType, fieldNames []string) *heap.Struct {
	md := msg.GetMessageDescriptor()
	fields := make([]value.Value, len(fieldNames))
	for i, name := range fieldNames {
		fd := md.FindFieldByName(name)
		if fd == nil {
			fields[i] = value.Nothing()
			continue
		}
		fields[i] = goToScalar(msg.GetField(fd))
	}
	return heap.NewStruct(structType, fields)
}

func scalarToGo(v value.Value) interface{} {
	if v.Tag != value.TagObj {
		switch {
		case v.IsFloat():
			return v.AsFloat64Generic()
		case v.Tag == value.TagBool:
			return v.AsBool()
		default:
			return v.AsInt64Generic()
		}
	}
	if s, ok := v.Obj.(*value.JLString); ok {
		return s.Go()
	}
	return value.Show(v)
}

func goToScalar(v interface{}) value.Value {
	switch t := v.(type) {
	case float64:
		return value.Float64(t)
	case float32:
		return value.Float64(float64(t))
	case int32:
		return value.Int64(int64(t))
	case int64:
		return value.Int64(t)
	case bool:
		return value.Bool(t)
	case string:
		return value.Obj(value.NewString(t))
	}
	return value.Value{Tag: value.TagNothing}
}

// Encode implements `protoEncode(messageName, structValue)` (SPEC_FULL
// §6.4): marshal a Julia Struct to protobuf wire bytes.
func Encode(messageName string, s *heap.Struct) ([]byte, error) {
	md, err := findMessage(messageName)
	if err != nil {
		return nil, err
	}
	msg, err := structToMessage(s, md)
	if err != nil {
		return nil, err
	}
	return msg.Marshal()
}

// Decode implements `protoDecode(messageName, bytes)`, producing a Struct
// of structType populated from the wire bytes.
func Decode(messageName string, data []byte, structType *types.DataType, fieldNames []string) (*heap.Struct, error) {
	md, err := findMessage(messageName)
	if err != nil {
		return nil, err
	}
	msg := dynamic.NewMessage(md)
	if err := msg.Unmarshal(data); err != nil {
		return nil, jlerror.NewArgumentError("protobuf decode failed: " + err.Error())
	}
	return messageToStruct(msg, structType, fieldNames), nil
}

// Conn wraps a grpc.ClientConn the way GrpcConnObject does in the teacher,
// keyed by target address for the VM's `grpcConnect`/`grpcClose` pair.
type Conn struct {
	target string
	cc     *grpc.ClientConn
}

func Dial(target string) (*Conn, error) {
	cc, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, jlerror.NewArgumentError("grpc dial failed: " + err.Error())
	}
	return &Conn{target: target, cc: cc}, nil
}

func (c *Conn) Close() error { return c.cc.Close() }

// Invoke calls methodPath ("package.Service/Method") with request encoded
// from reqStruct, decoding the reply into a Struct of replyType.
func (c *Conn) Invoke(methodPath string, reqStruct *heap.Struct, replyType *types.DataType, replyFieldNames []string) (*heap.Struct, error) {
	md, err := findMethod(methodPath)
	if err != nil {
		return nil, err
	}
	reqMsg, err := structToMessage(reqStruct, md.GetInputType())
	if err != nil {
		return nil, err
	}
	respMsg := dynamic.NewMessage(md.GetOutputType())
	path := methodPath
	if path[0] != '/' {
		path = "/" + path
	}
	if err := c.cc.Invoke(context.Background(), path, reqMsg, respMsg); err != nil {
		return nil, jlerror.NewArgumentError(fmt.Sprintf("RPC %s failed: %v", methodPath, err))
	}
	return messageToStruct(respMsg, replyType, replyFieldNames), nil
}
