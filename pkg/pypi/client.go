package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	defaultIndexURL   = "https://pypi.org/pypi"
	httpClientTimeout = 60 * time.Second
	defaultUserAgent  = "pyapi/0.1.0"
)

// ArtifactKind is the packaging format of a downloaded distribution.
type ArtifactKind string

const (
	KindWheel ArtifactKind = "wheel"
	KindSdist ArtifactKind = "sdist"
)

// FetchError means the baseline distribution is unobtainable: the version
// does not exist on the index, the network failed, or the index is down.
// Not retried internally; the operator remediation is a version override.
type FetchError struct {
	Project string
	Version string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s %s from Python index: %v", e.Project, e.Version, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client downloads published distributions from a Python package index via
// its JSON API.
type Client struct {
	httpClient *http.Client
	userAgent  string
	indexURL   string
}

// NewClient creates a Client that reads the PYAPI_INDEX_URL environment
// variable to determine the index base URL. If unset, it defaults to
// "https://pypi.org/pypi".
func NewClient() *Client {
	index := strings.TrimSpace(os.Getenv("PYAPI_INDEX_URL"))
	if index == "" {
		index = defaultIndexURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: httpClientTimeout},
		userAgent:  defaultUserAgent,
		indexURL:   strings.TrimRight(index, "/"),
	}
}

// releaseInfo is the subset of the index JSON API response we consume.
type releaseInfo struct {
	URLs []struct {
		PackageType string `json:"packagetype"`
		URL         string `json:"url"`
		Filename    string `json:"filename"`
	} `json:"urls"`
}

// Fetch downloads the distribution archive for project@version. Wheels are
// preferred because they unpack to the import packages directly; an sdist is
// used when no wheel was published.
func (c *Client) Fetch(ctx context.Context, project, version string) ([]byte, ArtifactKind, error) {
	metaURL := fmt.Sprintf("%s/%s/%s/json", c.indexURL, url.PathEscape(project), url.PathEscape(version))

	body, err := c.get(ctx, metaURL)
	if err != nil {
		return nil, "", &FetchError{Project: project, Version: version, Err: err}
	}

	var release releaseInfo
	if err := json.Unmarshal(body, &release); err != nil {
		return nil, "", &FetchError{Project: project, Version: version, Err: fmt.Errorf("decoding index response: %w", err)}
	}

	artifactURL, kind := pickArtifact(release)
	if artifactURL == "" {
		return nil, "", &FetchError{Project: project, Version: version, Err: fmt.Errorf("no downloadable distribution published")}
	}

	data, err := c.get(ctx, artifactURL)
	if err != nil {
		return nil, "", &FetchError{Project: project, Version: version, Err: err}
	}
	return data, kind, nil
}

func pickArtifact(release releaseInfo) (string, ArtifactKind) {
	var sdistURL string
	for _, u := range release.URLs {
		switch u.PackageType {
		case "bdist_wheel":
			return u.URL, KindWheel
		case "sdist":
			if sdistURL == "" {
				sdistURL = u.URL
			}
		}
	}
	if sdistURL != "" {
		return sdistURL, KindSdist
	}
	return "", ""
}

// get performs a single HTTP GET and returns the response body.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body from %s: %w", rawURL, err)
	}
	return data, nil
}
