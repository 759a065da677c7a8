// Package utils hosts the ambient plumbing shared by multigit commands: the
// viper-backed ConfigurationLoader and the zap LoggerFactory.
package utils
