// Package logger wraps zap with a global sugared logger and context helpers.
//
// The poll loop and every collaborator receive a context and log through it,
// so a wake session id or a component name attached once via WithKV/WithName
// shows up on every line emitted during that session.
package logger
