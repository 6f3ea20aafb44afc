package build

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nanhai/arena/config"
	"github.com/nanhai/arena/errors"
	"github.com/nanhai/arena/internal/httpclient"
)

// JobInfo is one entry of the stage-1 job query response
type JobInfo struct {
	JobID string `json:"job_id"`
}

// JobQueryResponse is the stage-1 payload. Info is null while the build
// system has not registered the job yet.
type JobQueryResponse struct {
	Info []JobInfo `json:"info"`
}

// PackageRunResult names one test suite that ran for a job
type PackageRunResult struct {
	PackageName string `json:"package_name"`
}

// PackageRunResponse is the stage-2 payload
type PackageRunResponse struct {
	PackageRunResults []PackageRunResult `json:"package_run_results"`
}

// Client talks to the external build system's three query endpoints.
// Safe for concurrent use; UpdateConfig swaps the settings at runtime
// when the config file changes.
type Client struct {
	mu   sync.RWMutex
	cfg  config.BuildAPIConfig
	http *httpclient.SaferClient

	logger *zap.SugaredLogger
}

// NewClient creates a build API client from config
func NewClient(cfg config.BuildAPIConfig, logger *zap.SugaredLogger) *Client {
	c := &Client{logger: logger}
	c.apply(cfg)
	return c
}

// UpdateConfig replaces the client's settings. Used by the config
// watcher to pick up rotated tokens and URL changes without a restart.
func (c *Client) UpdateConfig(cfg config.BuildAPIConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(cfg)
	if c.logger != nil {
		c.logger.Infow("Build API client reconfigured",
			"base_url", cfg.BaseURL,
			"insecure_skip_verify", cfg.InsecureSkipVerify)
	}
}

// apply rebuilds the HTTP client. Callers must hold mu (or be the
// constructor).
func (c *Client) apply(cfg config.BuildAPIConfig) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// The build system lives on the internal network, so private
	// addresses must stay reachable.
	blockPrivate := false
	c.cfg = cfg
	c.http = httpclient.NewWithOptions(timeout, httpclient.Options{
		BlockPrivateIP:     &blockPrivate,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
}

func (c *Client) snapshot() (config.BuildAPIConfig, *httpclient.SaferClient) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg, c.http
}

// QueryJob asks the build system for jobs on a repository branch.
// This is the only endpoint that requires the private token.
func (c *Client) QueryJob(ctx context.Context, buildPath, branch string) (*JobQueryResponse, error) {
	cfg, client := c.snapshot()

	params := url.Values{}
	params.Set("build_path", buildPath)
	params.Set("branch", branch)

	body, err := c.get(ctx, client, cfg.QueryJobURL()+"?"+params.Encode(), cfg.PrivateToken)
	if err != nil {
		return nil, err
	}

	var resp JobQueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to decode job query response")
	}
	return &resp, nil
}

// QueryPackageRuns asks which test suites ran for a job
func (c *Client) QueryPackageRuns(ctx context.Context, jobID string) (*PackageRunResponse, error) {
	cfg, client := c.snapshot()

	params := url.Values{}
	params.Set("job_id", jobID)

	body, err := c.get(ctx, client, cfg.QueryPackageRunURL()+"?"+params.Encode(), "")
	if err != nil {
		return nil, err
	}

	var resp PackageRunResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to decode package run response")
	}
	return &resp, nil
}

// FetchReport retrieves the raw report artifact for one suite of a job
func (c *Client) FetchReport(ctx context.Context, jobID, packageName, name string) ([]byte, error) {
	cfg, client := c.snapshot()

	params := url.Values{}
	params.Set("job_id", jobID)
	params.Set("package_name", packageName)
	params.Set("name", name)

	return c.get(ctx, client, cfg.QueryReportURL()+"?"+params.Encode(), "")
}

func (c *Client) get(ctx context.Context, client *httpclient.SaferClient, rawURL, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("PRIVATE-TOKEN", token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "build API request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read build API response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Newf("build API returned status %d", resp.StatusCode)
	}

	return body, nil
}
