// Package execshell runs external tools on behalf of multigit.
//
// ShellExecutor wraps a CommandRunner with structured logging, an optional
// per-command timeout, and lifecycle notifications for observers.
// OSCommandRunner is the os/exec backed runner used outside of tests.
package execshell
