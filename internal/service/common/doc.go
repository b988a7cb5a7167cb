// Package common holds helpers shared by several services.
//
// It provides the panel gRPC client wrapper with call timeouts and the actor
// (hostname and username) that is attached to every call for the device log.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
