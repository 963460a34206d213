// Package python fetches published Python distributions and extracts
// interface models from source trees and unpacked archives.
package python

import (
	"context"
	"fmt"

	"github.com/emenda-labs/pyapi/drivers/python/apidiff"
	"github.com/emenda-labs/pyapi/drivers/python/pymodel"
	"github.com/emenda-labs/pyapi/pkg/archive"
	"github.com/emenda-labs/pyapi/pkg/pypi"
)

// Driver wires the package-index client and the archive unpacker behind the
// two operations the orchestrator needs.
type Driver struct {
	index *pypi.Client
}

// NewDriver creates a Driver with a default index client.
func NewDriver() *Driver {
	return &Driver{index: pypi.NewClient()}
}

// FetchBaseline downloads the published distribution for project@version and
// unpacks it to a temp directory. Returns the directory and a cleanup
// function that removes it.
func (d *Driver) FetchBaseline(ctx context.Context, project, version string) (string, func(), error) {
	data, kind, err := d.index.Fetch(ctx, project, version)
	if err != nil {
		return "", nil, err
	}

	switch kind {
	case pypi.KindWheel:
		return archive.ExtractZip(data, version)
	case pypi.KindSdist:
		return archive.ExtractTarGz(data, version)
	default:
		return "", nil, fmt.Errorf("unsupported distribution kind %q for %s %s", kind, project, version)
	}
}

// ExtractModel builds the interface model of the package rooted at dir. The
// same extraction covers the local working tree and an unpacked
// distribution.
func (d *Driver) ExtractModel(ctx context.Context, dir, projectName string) (pymodel.InterfaceModel, error) {
	return apidiff.Extract(ctx, dir, projectName)
}
