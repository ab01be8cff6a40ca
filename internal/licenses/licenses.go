// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package licenses resolves the software license of each approach's
// published code from the hosting platform, proposing dataset updates
// where the recorded license disagrees with what the repository declares.
package licenses

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cremarco/sti-survey-engine/internal/httputil"
	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// apiBase is the GitHub REST endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.github.com"

// repoHosts are the forges the dataset links code on. Only GitHub exposes
// an anonymous license API; the others are recognized so they are skipped
// rather than misreported as broken links.
var repoHosts = map[string]bool{
	"github.com":    true,
	"bitbucket.org": true,
	"gitlab.com":    true,
}

// Change proposes a license value update for one record.
type Change struct {
	ID   string `json:"id" yaml:"id"`
	Repo string `json:"repo" yaml:"repo"`
	Old  string `json:"old,omitempty" yaml:"old,omitempty"`
	New  string `json:"new" yaml:"new"`
}

// Summary holds counts from a license lookup run.
type Summary struct {
	Examined int
	Proposed int
	Skipped  int
	Failed   int
}

// Client looks up repository licenses via the GitHub API.
type Client struct {
	HTTP   *http.Client
	Config types.LicenseConfig
}

// Lookup inspects every record with a code link, fetches the declared
// license for GitHub repositories, and returns the proposed changes.
// Non-repository links, unsupported hosts, and repositories without a
// detectable license are skipped with a progress note.
func (c *Client) Lookup(ctx context.Context, records []types.Record, w io.Writer) ([]Change, Summary, error) {
	var changes []Change
	var summary Summary

	for _, r := range records {
		select {
		case <-ctx.Done():
			return changes, summary, ctx.Err()
		default:
		}

		code := strings.TrimSpace(r.CodeURL())
		if code == "" {
			continue
		}
		summary.Examined++
		id := r.ID()

		if !probablyRepo(code) {
			summary.Skipped++
			fmt.Fprintf(w, "skipped %s: not a repository link\n", id)
			continue
		}

		owner, repo, ok := parseGitHub(code)
		if !ok {
			summary.Skipped++
			fmt.Fprintf(w, "skipped %s: unsupported host\n", id)
			continue
		}

		spdx, err := c.repoLicense(ctx, owner, repo)
		if err != nil {
			summary.Failed++
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			continue
		}
		if spdx == "" {
			summary.Skipped++
			fmt.Fprintf(w, "skipped %s: no license detected\n", id)
			continue
		}

		old, _ := r["license"].(string)
		old = strings.TrimSpace(old)
		if strings.EqualFold(old, spdx) {
			fmt.Fprintf(w, "ok      %s (%s)\n", id, spdx)
			continue
		}

		changes = append(changes, Change{ID: id, Repo: owner + "/" + repo, Old: old, New: spdx})
		summary.Proposed++
		if old == "" {
			fmt.Fprintf(w, "license %s: none -> %s\n", id, spdx)
		} else {
			fmt.Fprintf(w, "license %s: %s -> %s\n", id, old, spdx)
		}
	}

	fmt.Fprintf(w, "\nexamined: %d, proposed: %d, skipped: %d, failed: %d\n",
		summary.Examined, summary.Proposed, summary.Skipped, summary.Failed)

	return changes, summary, nil
}

// Apply sets the proposed license values on the matching records and
// returns how many records were updated.
func Apply(records []types.Record, changes []Change) int {
	byID := make(map[string]Change, len(changes))
	for _, ch := range changes {
		byID[ch.ID] = ch
	}

	updated := 0
	for _, r := range records {
		if ch, ok := byID[r.ID()]; ok {
			r["license"] = ch.New
			updated++
		}
	}
	return updated
}

// repoLicense fetches the declared license for a repository. The license
// endpoint answers for repositories with a detected LICENSE file; the repo
// object sometimes still knows when that 404s.
func (c *Client) repoLicense(ctx context.Context, owner, repo string) (string, error) {
	var lr githubLicenseResponse
	status, err := c.get(ctx, fmt.Sprintf("%s/repos/%s/%s/license", apiBase, owner, repo), &lr)
	if err != nil {
		return "", err
	}
	switch status {
	case http.StatusOK:
		return spdxOf(&lr.License), nil
	case http.StatusNotFound:
		// fall through to the repo object
	default:
		return "", fmt.Errorf("GitHub returned HTTP %d", status)
	}

	var gr githubRepo
	status, err = c.get(ctx, fmt.Sprintf("%s/repos/%s/%s", apiBase, owner, repo), &gr)
	if err != nil {
		return "", err
	}
	switch status {
	case http.StatusOK:
		if gr.License == nil {
			return "", nil
		}
		return spdxOf(gr.License), nil
	case http.StatusNotFound:
		return "", fmt.Errorf("repository %s/%s not found", owner, repo)
	}
	return "", fmt.Errorf("GitHub returned HTTP %d", status)
}

func (c *Client) get(ctx context.Context, reqURL string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if ua := c.Config.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if tok := c.Config.Token; tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.Config.MaxRetries)
	if err != nil {
		return 0, fmt.Errorf("GitHub request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return resp.StatusCode, fmt.Errorf("parsing GitHub response: %w", err)
		}
		return resp.StatusCode, nil
	}

	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// probablyRepo reports whether a code link points at a repository rather
// than an archive or paper artifact.
func probablyRepo(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	if strings.HasSuffix(path, ".pdf") || strings.HasSuffix(path, ".zip") {
		return false
	}
	return repoHosts[normalizeHost(u.Host)]
}

// parseGitHub extracts owner and repository from a GitHub URL. Trailing
// .git and deeper paths (tree/, blob/) are tolerated.
func parseGitHub(rawURL string) (owner, repo string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", false
	}
	if normalizeHost(u.Host) != "github.com" {
		return "", "", false
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 {
		return "", "", false
	}

	owner = segments[0]
	repo = strings.TrimSuffix(segments[1], ".git")
	if owner == "" || repo == "" {
		return "", "", false
	}
	return owner, repo, true
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// spdxOf returns the usable SPDX identifier, treating GitHub's NOASSERTION
// placeholder as unknown.
func spdxOf(l *githubLicense) string {
	if l == nil || l.SPDXID == "" || l.SPDXID == "NOASSERTION" {
		return ""
	}
	return l.SPDXID
}

// GitHub API JSON structures.
type githubLicenseResponse struct {
	License githubLicense `json:"license"`
}

type githubRepo struct {
	License *githubLicense `json:"license"`
}

type githubLicense struct {
	SPDXID string `json:"spdx_id"`
	Name   string `json:"name"`
}
