// Package gitver resolves the most recently published version of a project
// from its version-control tags.
package gitver

import (
	"fmt"
	"os/exec"
	"strings"
)

// LatestTag returns the most recent reachable tag in the repository
// containing dir, stripped of any leading "v". This is treated as the most
// recently published release version.
func LatestTag(dir string) (string, error) {
	cmd := exec.Command("git", "-C", dir, "describe", "--tags", "--abbrev=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("resolving latest published version from git tags: %v: %s", err, strings.TrimSpace(string(out)))
	}

	tag := strings.TrimSpace(string(out))
	tag = strings.TrimPrefix(tag, "v")
	if tag == "" {
		return "", fmt.Errorf("git describe returned an empty tag")
	}
	return tag, nil
}
