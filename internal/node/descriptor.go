package node

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// serviceProtoFile names the descriptor registered for the service. It is
// the ServiceDesc metadata reflection uses to describe the service.
const serviceProtoFile = "simplestorage/v1/simple_storage.proto"

// The service has no .proto source. Its descriptor is built here and
// registered with the global registry so reflection clients such as
// grpcurl can describe it.
func init() {
	fd, err := protodesc.NewFile(serviceFileDescriptor(), protoregistry.GlobalFiles)
	if err != nil {
		panic("node: invalid service descriptor: " + err.Error())
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic("node: failed to register service descriptor: " + err.Error())
	}
}

func serviceFileDescriptor() *descriptorpb.FileDescriptorProto {
	method := func(name, in, out string) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(in),
			OutputType: proto.String(out),
		}
	}

	const (
		stringValue = ".google.protobuf.StringValue"
		empty       = ".google.protobuf.Empty"
	)

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(serviceProtoFile),
		Package: proto.String("simplestorage.v1"),
		Dependency: []string{
			"google/protobuf/empty.proto",
			"google/protobuf/wrappers.proto",
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("SimpleStorage"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("Deploy", stringValue, stringValue),
				method("Set", stringValue, empty),
				method("Get", empty, stringValue),
			},
		}},
		Syntax: proto.String("proto3"),
	}
}
