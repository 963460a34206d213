// Package pyproject reads the project manifest (pyproject.toml) to resolve
// the distribution name and the version of the working tree.
package pyproject

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Project identifies the package being analyzed.
type Project struct {
	Name    string
	Version string
}

type manifest struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name    string `toml:"name"`
			Version string `toml:"version"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// Load reads the pyproject.toml in dir. The PEP 621 [project] table is
// preferred; [tool.poetry] is the fallback for older layouts.
func Load(dir string) (Project, error) {
	path := filepath.Join(dir, "pyproject.toml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Project{}, fmt.Errorf("no pyproject.toml found at %s", path)
		}
		return Project{}, fmt.Errorf("reading pyproject.toml: %w", err)
	}

	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Project{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	p := Project{Name: m.Project.Name, Version: m.Project.Version}
	if p.Name == "" {
		p.Name = m.Tool.Poetry.Name
	}
	if p.Version == "" {
		p.Version = m.Tool.Poetry.Version
	}

	if p.Name == "" {
		return Project{}, fmt.Errorf("%s declares no project name", path)
	}
	if p.Version == "" {
		return Project{}, fmt.Errorf("%s declares no project version", path)
	}
	return p, nil
}
