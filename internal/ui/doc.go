// Package ui holds the terminal-facing helpers of multigit: color mode
// detection, dim and bold console styles, the collection progress bar, and the
// console logger that echoes git command lifecycle events.
package ui
