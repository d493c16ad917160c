package build

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"acss/archive"
	"acss/source"
)

// unit is a module source found in one of inputs. Origin names it in logs and
// errors: file path, or archive path followed by path inside archive.
type unit struct {
	origin string
	data   []byte
}

func isModuleName(name string) bool {
	return slices.Contains(source.Extensions, strings.ToLower(filepath.Ext(name)))
}

// isArchiveFile checks content, not name, so renamed archives are found too.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// discover finds module sources for all inputs. Each input is a module file,
// a directory (walked recursively, archives inside are looked into), or an
// archive optionally followed by path inside it. Result is in natural order of
// origins, so compilation order does not depend on file system.
func discover(ctx context.Context, inputs []string, log *zap.Logger) ([]unit, error) {
	byOrigin := make(map[string]unit)
	origins := make([]string, 0, len(inputs))
	for _, in := range inputs {
		found, err := discoverOne(ctx, in, log)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			log.Warn("No modules found", zap.String("source", in))
		}
		for _, u := range found {
			if _, dup := byOrigin[u.origin]; dup {
				continue
			}
			byOrigin[u.origin] = u
			origins = append(origins, u.origin)
		}
	}
	sort.Sort(natural.StringSlice(origins))

	out := make([]unit, 0, len(origins))
	for _, o := range origins {
		out = append(out, byOrigin[o])
	}
	return out, nil
}

func discoverOne(ctx context.Context, src string, log *zap.Logger) ([]unit, error) {
	src, err := filepath.Abs(src)
	if err != nil {
		return nil, err
	}

	// shorten path until something on disk is found, the rest may be a path
	// inside archive
	for head := src; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fi, err := os.Stat(head)
		if err != nil {
			parent := filepath.Dir(head)
			if parent == head {
				break
			}
			head = parent
			continue
		}
		inside := strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))

		if fi.Mode().IsDir() {
			if inside != "" {
				return nil, fmt.Errorf("input source was not found (%s) => (%s)", head, inside)
			}
			return discoverDir(ctx, head, log)
		}
		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("unexpected path mode for (%s)", head)
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			return nil, fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			return discoverArchive(ctx, head, filepath.ToSlash(inside))
		}
		if inside != "" || !isModuleName(head) {
			return nil, fmt.Errorf("input was not recognized as module source (%s)", src)
		}
		data, err := os.ReadFile(head)
		if err != nil {
			return nil, err
		}
		return []unit{{origin: head, data: data}}, nil
	}
	return nil, fmt.Errorf("input source was not found (%s)", src)
}

func discoverDir(ctx context.Context, dir string, log *zap.Logger) ([]unit, error) {
	var units []unit
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if isModuleName(path) {
			data, err := os.ReadFile(path)
			if err != nil {
				log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
				return nil
			}
			units = append(units, unit{origin: path, data: data})
			return nil
		}

		arc, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !arc {
			log.Debug("Skipping file, not recognized as module or archive", zap.String("file", path))
			return nil
		}
		found, err := discoverArchive(ctx, path, "")
		if err != nil {
			log.Error("Unable to read archive", zap.String("file", path), zap.Error(err))
			return nil
		}
		units = append(units, found...)
		return nil
	})
	return units, err
}

func discoverArchive(ctx context.Context, path, inside string) ([]unit, error) {
	var units []unit
	err := archive.Walk(path, inside, isModuleName, func(name string, r io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", name, err)
		}
		units = append(units, unit{origin: path + "/" + name, data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to process archive: %w", err)
	}
	return units, nil
}
