// Package discovery walks directory trees and identifies git repository checkouts.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/multigit/internal/repos/shared"
)

const (
	gitMetadataEntryNameConstant     = ".git"
	currentDirectoryPrefixConstant   = "./"
	forwardSlashSeparatorConstant    = "/"
	rootNotDirectoryTemplateConstant = "%w: %s"
)

// DefaultMaxDepth is the depth limit applied when none is configured.
const DefaultMaxDepth = 999

// ErrRootNotDirectory indicates the scan root is missing or is not a directory.
var ErrRootNotDirectory = errors.New("not a directory")

// RepositoryEntry describes one discovered repository root.
type RepositoryEntry struct {
	Path        string
	IsSymlink   bool
	IsSubmodule bool
}

// Options narrows a scan.
type Options struct {
	// Excludes holds directory names pruned at every depth and root-relative paths (containing a separator) pruned below the root.
	Excludes []string
	// MaxDepth bounds how many directory levels below the root are inspected. The root is depth zero.
	MaxDepth int
}

// WalkErrorHandler receives directories that could not be read during a scan.
type WalkErrorHandler func(directoryPath string, walkError error)

// ScannerOption customizes a Scanner.
type ScannerOption func(*Scanner)

// WithWalkErrorHandler registers a callback for unreadable subdirectories.
func WithWalkErrorHandler(handler WalkErrorHandler) ScannerOption {
	return func(scanner *Scanner) {
		if handler != nil {
			scanner.walkErrorHandler = handler
		}
	}
}

// Scanner discovers git repositories below a root directory, following symbolic links.
type Scanner struct {
	fileSystem       shared.FileSystem
	walkErrorHandler WalkErrorHandler
}

// NewScanner constructs a Scanner backed by the provided filesystem.
func NewScanner(fileSystem shared.FileSystem, options ...ScannerOption) *Scanner {
	scanner := &Scanner{
		fileSystem:       fileSystem,
		walkErrorHandler: func(string, error) {},
	}
	for _, option := range options {
		if option != nil {
			option(scanner)
		}
	}
	return scanner
}

// Scan walks root and returns every repository found, sorted by path.
// Unreadable subdirectories are reported to the walk error handler and skipped.
func (scanner *Scanner) Scan(root string, options Options) ([]RepositoryEntry, error) {
	cleanedRoot := filepath.Clean(root)
	rootInfo, statError := scanner.fileSystem.Stat(cleanedRoot)
	if statError != nil || !rootInfo.IsDir() {
		return nil, fmt.Errorf(rootNotDirectoryTemplateConstant, ErrRootNotDirectory, root)
	}

	walk := &repositoryWalk{
		fileSystem:       scanner.fileSystem,
		walkErrorHandler: scanner.walkErrorHandler,
		exclusions:       newExclusionRules(cleanedRoot, options.Excludes),
		maxDepth:         options.MaxDepth,
	}
	walk.visit(cleanedRoot, 0, nil)

	sort.Slice(walk.repositories, func(leftIndex int, rightIndex int) bool {
		return walk.repositories[leftIndex].Path < walk.repositories[rightIndex].Path
	})
	return walk.repositories, nil
}

type repositoryWalk struct {
	fileSystem       shared.FileSystem
	walkErrorHandler WalkErrorHandler
	exclusions       exclusionRules
	maxDepth         int
	repositories     []RepositoryEntry
}

func (walk *repositoryWalk) visit(directoryPath string, depth int, ancestorRealPaths []string) {
	if depth > walk.maxDepth {
		return
	}

	absolutePath, absoluteError := filepath.Abs(directoryPath)
	if absoluteError != nil {
		walk.walkErrorHandler(directoryPath, absoluteError)
		return
	}
	realPath, resolveError := walk.fileSystem.EvalSymlinks(absolutePath)
	if resolveError != nil {
		walk.walkErrorHandler(directoryPath, resolveError)
		return
	}
	for _, ancestorRealPath := range ancestorRealPaths {
		if ancestorRealPath == realPath {
			return
		}
	}

	directoryEntries, readError := walk.fileSystem.ReadDir(directoryPath)
	if readError != nil {
		walk.walkErrorHandler(directoryPath, readError)
		return
	}

	for _, directoryEntry := range directoryEntries {
		if directoryEntry.Name() != gitMetadataEntryNameConstant {
			continue
		}
		metadataKind := walk.classifyMetadataEntry(filepath.Join(directoryPath, gitMetadataEntryNameConstant), directoryEntry)
		if metadataKind == metadataKindNone {
			break
		}
		walk.repositories = append(walk.repositories, RepositoryEntry{
			Path:        normalizeRepositoryPath(directoryPath),
			IsSymlink:   walk.isSymlink(directoryPath),
			IsSubmodule: metadataKind == metadataKindFile,
		})
		break
	}

	descendantAncestors := append(append([]string{}, ancestorRealPaths...), realPath)
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		if entryName == gitMetadataEntryNameConstant {
			continue
		}
		childPath := filepath.Join(directoryPath, entryName)
		if !walk.isDirectory(childPath, directoryEntry) {
			continue
		}
		if !walk.exclusions.shouldDescend(childPath, entryName) {
			continue
		}
		walk.visit(childPath, depth+1, descendantAncestors)
	}
}

type metadataKind int

const (
	metadataKindNone metadataKind = iota
	metadataKindDirectory
	metadataKindFile
)

func (walk *repositoryWalk) classifyMetadataEntry(metadataPath string, directoryEntry fs.DirEntry) metadataKind {
	entryType := directoryEntry.Type()
	if entryType&fs.ModeSymlink != 0 {
		targetInfo, statError := walk.fileSystem.Stat(metadataPath)
		if statError != nil {
			return metadataKindNone
		}
		entryType = targetInfo.Mode().Type()
	}

	switch {
	case entryType.IsDir():
		return metadataKindDirectory
	case entryType.IsRegular():
		return metadataKindFile
	default:
		return metadataKindNone
	}
}

func (walk *repositoryWalk) isDirectory(childPath string, directoryEntry fs.DirEntry) bool {
	if directoryEntry.IsDir() {
		return true
	}
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := walk.fileSystem.Stat(childPath)
	return statError == nil && targetInfo.IsDir()
}

func (walk *repositoryWalk) isSymlink(directoryPath string) bool {
	linkInfo, lstatError := walk.fileSystem.Lstat(directoryPath)
	return lstatError == nil && linkInfo.Mode()&fs.ModeSymlink != 0
}

func normalizeRepositoryPath(directoryPath string) string {
	return strings.TrimPrefix(directoryPath, currentDirectoryPrefixConstant)
}

type exclusionRules struct {
	directoryNames map[string]struct{}
	rootedPaths    []string
}

func newExclusionRules(root string, excludes []string) exclusionRules {
	rules := exclusionRules{directoryNames: make(map[string]struct{})}
	for _, exclude := range excludes {
		trimmedExclude := strings.TrimRight(strings.TrimSpace(exclude), forwardSlashSeparatorConstant+string(filepath.Separator))
		if len(trimmedExclude) == 0 {
			continue
		}
		if strings.ContainsRune(trimmedExclude, '/') || strings.ContainsRune(trimmedExclude, filepath.Separator) {
			relativeExclude := strings.TrimLeft(trimmedExclude, forwardSlashSeparatorConstant+string(filepath.Separator))
			rules.rootedPaths = append(rules.rootedPaths, filepath.Join(root, filepath.FromSlash(relativeExclude)))
			continue
		}
		rules.directoryNames[trimmedExclude] = struct{}{}
	}
	return rules
}

// shouldDescend reports whether the walk may enter childPath.
func (rules exclusionRules) shouldDescend(childPath string, childName string) bool {
	if _, excluded := rules.directoryNames[childName]; excluded {
		return false
	}
	for _, rootedPath := range rules.rootedPaths {
		if childPath == rootedPath || strings.HasPrefix(childPath, rootedPath+string(filepath.Separator)) {
			return false
		}
	}
	return true
}
