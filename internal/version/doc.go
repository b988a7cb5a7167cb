// Package version exposes build metadata for the alarm binaries.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags.
// Every binary gets a `version` subcommand through AttachCobraVersionCommand.
package version
