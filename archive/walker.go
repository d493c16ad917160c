// Package archive reads module sources packed into zip archives.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// WalkFunc is called for every matching entry with its slash separated name
// inside archive. Reader is valid only during the call.
type WalkFunc func(name string, r io.Reader) error

// Walk visits regular entries of archive located under prefix which satisfy
// match (nil matches everything), in archive order. Archives with absolute
// entry names or names containing ".." are rejected as a whole.
func Walk(archive, prefix string, match func(name string) bool, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	prefix = strings.Trim(prefix, "/")
	for _, f := range r.File {
		name := f.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !under(name, prefix) {
			continue
		}
		if match != nil && !match(name) {
			continue
		}
		if err := visit(f, walkFn); err != nil {
			return err
		}
	}
	return nil
}

func visit(f *zip.File, walkFn WalkFunc) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("zip entry %q: %w", f.Name, err)
	}
	defer rc.Close()
	return walkFn(f.Name, rc)
}

// under reports whether name is prefix itself or is inside prefix directory.
func under(name, prefix string) bool {
	if prefix == "" || name == prefix {
		return true
	}
	return strings.HasPrefix(name, prefix+"/")
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	return !strings.Contains("/"+name+"/", "/../")
}
