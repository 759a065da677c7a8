// Package pull runs git pull --rebase in every repository found below the target directories.
// Repositories are processed one at a time in scan order and a failure never stops the run.
package pull
