// Package hcrun wraps a command and reports its outcome to a Healthchecks.io
// style monitoring endpoint.
package hcrun

// Name is the program name used in diagnostics and the client label.
const Name = "hcrun"

// Version is the build version, overridden with -ldflags at release time.
var Version = "dev"
