// Package panel implements the gRPC transport of the remote front panel.
//
// The service is declared directly in Go over protobuf well-known types, so
// no generated code is needed: buttons travel as Int32Value, token UIDs as
// StringValue and the device status as a Struct.
package panel
