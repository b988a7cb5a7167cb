// Package device declares the hardware capabilities the alarm core calls into.
//
// The real clock chip, durable storage, token reader, buttons, audio and the
// suspend primitive live outside the core; it only sees these interfaces.
package device
