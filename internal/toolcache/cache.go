// Package toolcache stores installed tool trees under
// <root>/<tool>/<version>/<arch>, using the same layout as the hosted
// runner tool cache so entries survive on self-hosted runners between jobs.
//
// An entry only counts as present once its "<arch>.complete" marker has
// been written; a crash half-way through CacheDir leaves an entry that
// Find ignores.
package toolcache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/CyberAndrii/setup-steamcmd/internal/logging"
)

// Key identifies one cache entry.
type Key struct {
	Tool    string
	Version string
	Arch    string
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%s/%s", k.Tool, k.Version, k.Arch)
}

// Cache is a directory-backed tool cache.
type Cache struct {
	root string
	log  logging.Logger
}

// New creates a cache rooted at root.
func New(root string, log logging.Logger) *Cache {
	return &Cache{root: root, log: logging.OrNop(log)}
}

func (c *Cache) entryDir(key Key) string {
	return filepath.Join(c.root, key.Tool, key.Version, key.Arch)
}

func (c *Cache) markerPath(key Key) string {
	return c.entryDir(key) + ".complete"
}

func (c *Cache) lockPath(key Key) string {
	return filepath.Join(c.root, key.Tool, key.Version, "."+key.Arch+".lock")
}

// Find returns the directory for key if a completed entry exists.
func (c *Cache) Find(key Key) (string, bool) {
	if key.Tool == "" || key.Version == "" || key.Arch == "" {
		return "", false
	}

	dir := c.entryDir(key)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", false
	}
	if _, err := os.Stat(c.markerPath(key)); err != nil {
		c.log.Debug("cache entry without completion marker", "key", key.String(), "dir", dir)
		return "", false
	}
	return dir, true
}

// CacheDir copies sourceDir into the entry for key, replacing any previous
// contents, and returns the entry directory. The entry stays invisible to
// Find until MarkComplete is called for key.
func (c *Cache) CacheDir(ctx context.Context, sourceDir string, key Key) (string, error) {
	if key.Tool == "" || key.Version == "" || key.Arch == "" {
		return "", fmt.Errorf("incomplete cache key %q", key.String())
	}

	info, err := os.Stat(sourceDir)
	if err != nil {
		return "", fmt.Errorf("stat source dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source %s is not a directory", sourceDir)
	}

	lock, err := acquireLock(ctx, c.lockPath(key))
	if err != nil {
		return "", err
	}
	defer lock.Release()

	dest := c.entryDir(key)
	marker := c.markerPath(key)

	if err := os.RemoveAll(marker); err != nil {
		return "", fmt.Errorf("remove marker: %w", err)
	}
	if err := os.RemoveAll(dest); err != nil {
		return "", fmt.Errorf("clear cache entry: %w", err)
	}

	c.log.Debug("caching", "source", sourceDir, "dest", dest)
	if err := copyTree(ctx, sourceDir, dest); err != nil {
		return "", fmt.Errorf("copy to cache: %w", err)
	}

	return dest, nil
}

// MarkComplete makes the entry for key visible to Find. Callers invoke it
// once the cached copy has been verified.
func (c *Cache) MarkComplete(key Key) error {
	if key.Tool == "" || key.Version == "" || key.Arch == "" {
		return fmt.Errorf("incomplete cache key %q", key.String())
	}
	dir := c.entryDir(key)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("no cache entry for %s", key.String())
	}
	if err := os.WriteFile(c.markerPath(key), nil, 0o644); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	c.log.Debug("cache entry complete", "key", key.String())
	return nil
}

func copyTree(ctx context.Context, src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		switch mode := info.Mode(); {
		case mode.IsDir():
			return os.MkdirAll(target, mode.Perm()|0o700)
		case mode&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case mode.IsRegular():
			return copyFile(path, target, mode.Perm())
		default:
			return nil
		}
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
