// Package archive unpacks downloaded distribution archives — wheels (zip)
// and sdists (tar.gz) — into temp directories, with path-traversal and
// size-bomb protection.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

const (
	maxFileSize  = 100 * 1024 * 1024  // 100 MB per file
	maxTotalSize = 1024 * 1024 * 1024 // 1 GB total extracted
	maxFileCount = 50000
)

// ExtractZip unpacks a wheel (or any zip archive) to a temp directory and
// returns its path plus a cleanup function that removes it.
func ExtractZip(data []byte, prefix string) (dir string, cleanup func(), err error) {
	tmpDir, cleanupFn, err := tempDir(prefix)
	if err != nil {
		return "", nil, err
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		cleanupFn()
		return "", nil, fmt.Errorf("reading zip archive: %w", err)
	}

	if len(reader.File) > maxFileCount {
		cleanupFn()
		return "", nil, fmt.Errorf("zip archive contains %d files, exceeds maximum of %d", len(reader.File), maxFileCount)
	}

	var total int64
	for _, file := range reader.File {
		// Symlinks are skipped to prevent link-based escapes.
		if file.Mode()&os.ModeSymlink != 0 {
			continue
		}

		if file.FileInfo().IsDir() {
			target, err := secureJoin(tmpDir, file.Name)
			if err != nil {
				cleanupFn()
				return "", nil, err
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				cleanupFn()
				return "", nil, fmt.Errorf("creating directory %s: %w", file.Name, err)
			}
			continue
		}

		rc, err := file.Open()
		if err != nil {
			cleanupFn()
			return "", nil, fmt.Errorf("opening zip entry %s: %w", file.Name, err)
		}
		n, err := writeEntry(tmpDir, file.Name, rc)
		rc.Close()
		if err != nil {
			cleanupFn()
			return "", nil, err
		}

		total += n
		if total > maxTotalSize {
			cleanupFn()
			return "", nil, fmt.Errorf("total extracted size exceeds maximum of %d bytes", maxTotalSize)
		}
	}

	return tmpDir, cleanupFn, nil
}

// ExtractTarGz unpacks an sdist to a temp directory and returns its path
// plus a cleanup function that removes it.
func ExtractTarGz(data []byte, prefix string) (dir string, cleanup func(), err error) {
	tmpDir, cleanupFn, err := tempDir(prefix)
	if err != nil {
		return "", nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		cleanupFn()
		return "", nil, fmt.Errorf("reading gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var total int64
	var count int

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			cleanupFn()
			return "", nil, fmt.Errorf("reading tar archive: %w", err)
		}

		count++
		if count > maxFileCount {
			cleanupFn()
			return "", nil, fmt.Errorf("tar archive contains more than %d files", maxFileCount)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			target, err := secureJoin(tmpDir, hdr.Name)
			if err != nil {
				cleanupFn()
				return "", nil, err
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				cleanupFn()
				return "", nil, fmt.Errorf("creating directory %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			n, err := writeEntry(tmpDir, hdr.Name, tr)
			if err != nil {
				cleanupFn()
				return "", nil, err
			}
			total += n
			if total > maxTotalSize {
				cleanupFn()
				return "", nil, fmt.Errorf("total extracted size exceeds maximum of %d bytes", maxTotalSize)
			}
		default:
			// Symlinks, devices, and the rest are skipped.
		}
	}

	return tmpDir, cleanupFn, nil
}

func tempDir(prefix string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "pyapi-"+prefix+"-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp directory: %w", err)
	}
	return tmpDir, func() { os.RemoveAll(tmpDir) }, nil
}

// secureJoin joins name under base, rejecting entries that would resolve
// outside it (zip-slip / tar-slip).
func secureJoin(base, name string) (string, error) {
	target := filepath.Join(base, name)

	resolvedTarget, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolving path %s: %w", name, err)
	}
	resolvedBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolving base path: %w", err)
	}
	if resolvedTarget != resolvedBase && !strings.HasPrefix(resolvedTarget, resolvedBase+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry attempts path traversal: %s", name)
	}
	return target, nil
}

// writeEntry extracts one regular file, enforcing the per-file size cap.
func writeEntry(base, name string, r io.Reader) (int64, error) {
	target, err := secureJoin(base, name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("creating parent directory for %s: %w", name, err)
	}

	out, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("creating file %s: %w", name, err)
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return 0, fmt.Errorf("extracting %s: %w", name, err)
	}
	if n > maxFileSize {
		return 0, fmt.Errorf("file %s exceeds maximum size of %d bytes", name, maxFileSize)
	}
	return n, nil
}
