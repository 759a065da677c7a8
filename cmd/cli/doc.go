// Package cli constructs the multigit command-line interface. The repository
// report is the root command; the pull and config subcommands share its
// configuration loader and structured logger.
package cli
