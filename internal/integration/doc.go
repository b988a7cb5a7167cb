// Package integration runs the alarm-clock runtime against the panel client
// over a real gRPC connection.
package integration
