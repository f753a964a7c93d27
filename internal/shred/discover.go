package shred

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gobwas/glob"
)

// DiscoverOptions controls which files discovery records. Exclusions
// match against base names; excluded files are never recorded and so
// never erased.
type DiscoverOptions struct {
	// ExcludeFiles are exact base names to skip
	ExcludeFiles []string

	// ExcludePatterns are regular expressions to skip
	ExcludePatterns []string

	// ExcludeGlobs are glob patterns to skip
	ExcludeGlobs []string
}

type excludeMatcher struct {
	files    map[string]bool
	patterns []*regexp.Regexp
	globs    []glob.Glob
}

func newExcludeMatcher(opts DiscoverOptions) (*excludeMatcher, error) {
	m := &excludeMatcher{files: make(map[string]bool)}
	for _, f := range opts.ExcludeFiles {
		m.files[f] = true
	}
	for _, p := range opts.ExcludePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, NewShredError("discover", p, err)
		}
		m.patterns = append(m.patterns, re)
	}
	for _, g := range opts.ExcludeGlobs {
		gl, err := glob.Compile(g)
		if err != nil {
			return nil, NewShredError("discover", g, err)
		}
		m.globs = append(m.globs, gl)
	}
	return m, nil
}

func (m *excludeMatcher) excluded(name string) bool {
	if m.files[name] {
		return true
	}
	for _, re := range m.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	for _, gl := range m.globs {
		if gl.Match(name) {
			return true
		}
	}
	return false
}

// Discover expands the input paths into a flat ordered list of regular
// files. Symbolic links are never followed: a symlink root is skipped
// entirely, and a symlinked directory inside a tree is pruned without
// traversal so a planted link cannot pull outside files into scope.
// Hidden entries are included. An unreadable or missing root aborts
// discovery with an error.
func Discover(paths []string, opts DiscoverOptions) ([]DiscoveredFile, error) {
	matcher, err := newExcludeMatcher(opts)
	if err != nil {
		return nil, err
	}

	var files []DiscoveredFile
	for _, root := range paths {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, NewShredError("discover", root, err)
		}

		info, err := os.Lstat(absRoot)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, NewShredError("discover", absRoot, ErrNotFound)
			}
			if os.IsPermission(err) {
				return nil, NewShredError("discover", absRoot, ErrPermissionDenied)
			}
			return nil, NewShredError("discover", absRoot, err)
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			slog.Debug("skipping symbolic link", "path", absRoot)

		case info.Mode().IsRegular():
			if matcher.excluded(filepath.Base(absRoot)) {
				slog.Debug("excluded by filter", "path", absRoot)
				continue
			}
			files = append(files, DiscoveredFile{
				Path:  absRoot,
				Size:  info.Size(),
				Nlink: hardLinkCount(info),
			})

		case info.IsDir():
			found, err := discoverTree(absRoot, matcher)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)

		default:
			// sockets, fifos, devices
			slog.Debug("skipping special file", "path", absRoot, "mode", info.Mode())
		}
	}

	return files, nil
}

func discoverTree(root string, matcher *excludeMatcher) ([]DiscoveredFile, error) {
	var files []DiscoveredFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return NewShredError("discover", path, ErrPermissionDenied)
			}
			return NewShredError("discover", path, err)
		}

		// WalkDir never follows symlinks, so a symlinked directory
		// arrives as a single link entry and its target subtree is
		// pruned for free.
		if d.Type()&fs.ModeSymlink != 0 {
			slog.Debug("skipping symbolic link", "path", path)
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if matcher.excluded(d.Name()) {
			slog.Debug("excluded by filter", "path", path)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return NewShredError("discover", path, err)
		}

		files = append(files, DiscoveredFile{
			Path:  path,
			Size:  info.Size(),
			Nlink: hardLinkCount(info),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
