// Package devicetest provides in-memory fakes of the device capabilities for tests.
//
// The fakes record every call so tests can assert side effects such as the
// number of alarm register writes or the wake sources armed before standby.
package devicetest
