// Package client implements the alarm-panel commands: pressing and
// releasing buttons, presenting a token and reading the device status over
// the panel gRPC API.
package client
