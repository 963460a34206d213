package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func buildTarGz(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range entries {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func readExtracted(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("reading extracted %s: %v", name, err)
	}
	return string(data)
}

func TestExtractZip(t *testing.T) {
	data := buildZip(t, map[string]string{
		"test_pyapi_lib/__init__.py": "",
		"test_pyapi_lib/animals.py":  "class Animal:\n    pass\n",
	})

	dir, cleanup, err := ExtractZip(data, "wheel")
	if err != nil {
		t.Fatalf("ExtractZip: %v", err)
	}
	defer cleanup()

	if got := readExtracted(t, dir, "test_pyapi_lib/animals.py"); !strings.Contains(got, "class Animal") {
		t.Errorf("extracted animals.py = %q", got)
	}
	if !strings.Contains(filepath.Base(dir), "pyapi-wheel") {
		t.Errorf("temp dir %q missing prefix", dir)
	}
}

func TestExtractZip_Cleanup(t *testing.T) {
	data := buildZip(t, map[string]string{"a.py": "x = 1\n"})

	dir, cleanup, err := ExtractZip(data, "wheel")
	if err != nil {
		t.Fatal(err)
	}
	cleanup()

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("cleanup left %s behind", dir)
	}
}

func TestExtractZip_RejectsTraversal(t *testing.T) {
	data := buildZip(t, map[string]string{"../evil.py": "import os\n"})

	_, _, err := ExtractZip(data, "wheel")
	if err == nil || !strings.Contains(err.Error(), "path traversal") {
		t.Fatalf("err = %v, want path traversal rejection", err)
	}
}

func TestExtractZip_NotAnArchive(t *testing.T) {
	if _, _, err := ExtractZip([]byte("plainly not a zip"), "wheel"); err == nil {
		t.Fatal("extracting garbage succeeded")
	}
}

func TestExtractTarGz(t *testing.T) {
	data := buildTarGz(t, map[string]string{
		"test_pyapi_lib-1.0.0/pyproject.toml":              "[project]\nname = \"test-pyapi-lib\"\n",
		"test_pyapi_lib-1.0.0/test_pyapi_lib/functions.py": "def f():\n    pass\n",
	})

	dir, cleanup, err := ExtractTarGz(data, "sdist")
	if err != nil {
		t.Fatalf("ExtractTarGz: %v", err)
	}
	defer cleanup()

	got := readExtracted(t, dir, "test_pyapi_lib-1.0.0/test_pyapi_lib/functions.py")
	if !strings.Contains(got, "def f()") {
		t.Errorf("extracted functions.py = %q", got)
	}
}

func TestExtractTarGz_RejectsTraversal(t *testing.T) {
	data := buildTarGz(t, map[string]string{"../../evil.py": "import os\n"})

	_, _, err := ExtractTarGz(data, "sdist")
	if err == nil || !strings.Contains(err.Error(), "path traversal") {
		t.Fatalf("err = %v, want path traversal rejection", err)
	}
}

func TestExtractTarGz_SkipsSymlinks(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{
		Name:     "link.py",
		Linkname: "/etc/passwd",
		Typeflag: tar.TypeSymlink,
	}); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	dir, cleanup, err := ExtractTarGz(buf.Bytes(), "sdist")
	if err != nil {
		t.Fatalf("ExtractTarGz: %v", err)
	}
	defer cleanup()

	if _, err := os.Lstat(filepath.Join(dir, "link.py")); !os.IsNotExist(err) {
		t.Error("symlink entry was materialized")
	}
}
