// Package discovery enumerates the Markdown documents of a docs tree and
// derives their public slugs.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnoreFile is the gitignore-style file read from the docs root.
const DefaultIgnoreFile = ".litoignore"

// DefaultExcludedDirs are asset and layout directories that never hold content pages.
var DefaultExcludedDirs = []string{
	"_assets",
	"_css",
	"_images",
	"_static",
	"_landing",
	"_navbar",
	"_footer",
	"public",
	"node_modules",
}

// DefaultExcludedFiles are site configuration files that are never content pages.
var DefaultExcludedFiles = []string{
	"docs-config.json",
	"vercel.json",
	"netlify.toml",
	"README.md",
}

// File is one eligible document.
type File struct {
	AbsolutePath string
	// RelativePath is relative to the docs root and always uses "/" separators.
	RelativePath string
}

// Options extends the default exclusions.
type Options struct {
	ExcludeDirs  []string // Directory names skipped in addition to DefaultExcludedDirs
	ExcludeFiles []string // File names skipped in addition to DefaultExcludedFiles
	IgnoreFile   string   // Ignore file name relative to the root (default: .litoignore)
}

// Collect walks root and returns every .md/.mdx document in lexical order.
func Collect(root string, opts Options) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	excludedDirs := append(slices.Clone(DefaultExcludedDirs), opts.ExcludeDirs...)
	excludedFiles := append(slices.Clone(DefaultExcludedFiles), opts.ExcludeFiles...)

	matcher, err := loadIgnoreFile(root, opts.IgnoreFile)
	if err != nil {
		return nil, err
	}

	var files []File
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			top, _, _ := strings.Cut(rel, "/")
			if slices.Contains(excludedDirs, d.Name()) || slices.Contains(excludedDirs, top) {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || slices.Contains(excludedFiles, d.Name()) {
			return nil
		}
		if !IsMarkdown(d.Name()) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}

		files = append(files, File{AbsolutePath: p, RelativePath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return files, nil
}

func loadIgnoreFile(root, name string) (*ignore.GitIgnore, error) {
	if name == "" {
		name = DefaultIgnoreFile
	}
	p := filepath.Join(root, name)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	matcher, err := ignore.CompileIgnoreFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return matcher, nil
}

// IsMarkdown reports whether name has a .md or .mdx extension (any case).
func IsMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".mdx":
		return true
	}
	return false
}

// DeriveSlug converts a relative document path into its public slug.
//
//	"getting-started/installation.md" -> "/getting-started/installation"
//	"introduction/index.mdx"          -> "/introduction"
//	"index.md"                        -> "/"
func DeriveSlug(relativePath string) string {
	slug := filepath.ToSlash(relativePath)
	if IsMarkdown(slug) {
		slug = strings.TrimSuffix(slug, path.Ext(slug))
	}

	slug = strings.TrimSuffix(slug, "/index")
	if slug == "index" {
		slug = ""
	}

	return "/" + slug
}

// IsIndex reports whether the relative path names a directory index document.
func IsIndex(relativePath string) bool {
	base := path.Base(filepath.ToSlash(relativePath))
	return base == "index.md" || base == "index.mdx"
}
