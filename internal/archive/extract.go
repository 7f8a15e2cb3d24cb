// Package archive unpacks the SteamCMD distribution archives.
//
// Each extraction gets its own directory under the staging root so a
// retried job never collides with leftovers from a previous attempt.
package archive

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

// ErrFormatMismatch is returned when an archive's extension does not match
// the extractor it was handed to.
var ErrFormatMismatch = errors.New("archive format mismatch")

// Extractor unpacks archives into unique directories below root.
type Extractor struct {
	root string
}

// NewExtractor creates an extractor staging into root.
func NewExtractor(root string) *Extractor {
	return &Extractor{root: root}
}

// ExtractTar unpacks a .tar, .tar.gz or .tgz archive and returns the
// directory it was unpacked into.
func (e *Extractor) ExtractTar(ctx context.Context, archivePath, name string) (string, error) {
	lower := strings.ToLower(archivePath)
	compressed := strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz")
	if !compressed && !strings.HasSuffix(lower, ".tar") {
		return "", fmt.Errorf("%w: %s is not a tar archive", ErrFormatMismatch, filepath.Base(archivePath))
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	dest, err := e.newDest(name)
	if err != nil {
		return "", err
	}
	if err := untar(ctx, r, dest); err != nil {
		os.RemoveAll(dest)
		return "", err
	}
	return dest, nil
}

// ExtractZip unpacks a .zip archive and returns the directory it was
// unpacked into.
func (e *Extractor) ExtractZip(ctx context.Context, archivePath, name string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(archivePath), ".zip") {
		return "", fmt.Errorf("%w: %s does not have a .zip extension", ErrFormatMismatch, filepath.Base(archivePath))
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	dest, err := e.newDest(name)
	if err != nil {
		return "", err
	}

	if err := unzip(ctx, zr.File, dest); err != nil {
		os.RemoveAll(dest)
		return "", err
	}
	return dest, nil
}

func (e *Extractor) newDest(name string) (string, error) {
	dest := filepath.Join(e.root, fmt.Sprintf("%s-%s", name, uuid.NewString()))
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create extract dir: %w", err)
	}
	return dest, nil
}

func untar(ctx context.Context, r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, err := safeJoin(dest, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}
		default:
			// devices, fifos and the like are not part of the distribution
		}
	}
}

func unzip(ctx context.Context, files []*zip.File, dest string) error {
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := unzipEntry(file, dest); err != nil {
			return err
		}
	}
	return nil
}

func unzipEntry(file *zip.File, dest string) error {
	target, err := safeJoin(dest, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", target, err)
		}
		return nil
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", file.Name, err)
	}
	defer rc.Close()

	perm := file.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	return writeFile(target, rc, perm)
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}
	return nil
}

// safeJoin rejects entries that would land outside dest.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if target != filepath.Clean(dest) && !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path in archive: %s", name)
	}
	return target, nil
}
