package gitver

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func initTaggedRepo(t *testing.T, tags ...string) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v: %s", args, err, out)
		}
	}

	run("init")
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "initial")
	for _, tag := range tags {
		run("tag", tag)
	}
	return dir
}

func TestLatestTag(t *testing.T) {
	dir := initTaggedRepo(t, "1.0.0")

	got, err := LatestTag(dir)
	if err != nil {
		t.Fatalf("LatestTag: %v", err)
	}
	if got != "1.0.0" {
		t.Errorf("LatestTag = %q, want 1.0.0", got)
	}
}

func TestLatestTag_StripsVPrefix(t *testing.T) {
	dir := initTaggedRepo(t, "v2.3.4")

	got, err := LatestTag(dir)
	if err != nil {
		t.Fatalf("LatestTag: %v", err)
	}
	if got != "2.3.4" {
		t.Errorf("LatestTag = %q, want 2.3.4", got)
	}
}

func TestLatestTag_NoTags(t *testing.T) {
	dir := initTaggedRepo(t)

	if _, err := LatestTag(dir); err == nil {
		t.Fatal("LatestTag succeeded in a repository without tags")
	}
}

func TestLatestTag_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	if _, err := LatestTag(t.TempDir()); err == nil {
		t.Fatal("LatestTag succeeded outside a repository")
	}
}
