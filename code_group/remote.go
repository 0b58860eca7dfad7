package code_group

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/josehu07/codetective/utils"
)

// GitHub endpoint defaults.
const (
	githubHostStr   = "github.com"
	githubAPIPrefix = "https://api.github.com/repos"
	githubRawPrefix = "https://raw.githubusercontent.com"
)

// githubTreeEntry is one entry of a GitHub "get a tree" API response.
type githubTreeEntry struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Sha  string `json:"sha"`
	Size *int64 `json:"size,omitempty"`
}

// githubTreeResponse is a GitHub "get a tree" API response body.
type githubTreeResponse struct {
	Sha  string            `json:"sha"`
	Tree []githubTreeEntry `json:"tree"`
}

// githubRepoMetaResponse is a GitHub repo metadata API response body.
type githubRepoMetaResponse struct {
	Name          string `json:"name"`
	DefaultBranch string `json:"default_branch"`
}

// remoteFileInfo describes a discovered remote file before registration.
type remoteFileInfo struct {
	path       string
	url        *url.URL
	approxSize int // 0 means unknown
}

// RemoteFetcher resolves single-file URLs and GitHub repositories into remote
// file metadata, without downloading file bodies up front. Endpoint prefixes
// are fields so tests can point them at local servers.
type RemoteFetcher struct {
	client    *http.Client
	WebHost   string
	APIPrefix string
	RawPrefix string
}

// NewRemoteFetcher creates a fetcher against the real GitHub endpoints.
// Redirects are handled manually (at most one hop) rather than followed.
func NewRemoteFetcher() *RemoteFetcher {
	return &RemoteFetcher{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		WebHost:   githubHostStr,
		APIPrefix: githubAPIPrefix,
		RawPrefix: githubRawPrefix,
	}
}

// validateFileURL validates the form of a remote file URL, returning the full
// path name on success.
func validateFileURL(u *url.URL) (string, error) {
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", utils.ParseErr("unsupported URL scheme: %s", u.Scheme)
	}

	ext, ok := urlExtension(u)
	if !ok {
		return "", utils.ParseErr("file URL missing file extension")
	}
	if !IsCodeExtension(ext) {
		return "", utils.ExtenErr("file extension '%s' is not code", ext)
	}
	return strings.Trim(u.Path, "/"), nil
}

// handleRedirection follows at most one redirect hop (relative or absolute
// Location header), re-issuing the metadata probe against the resolved URL.
func (f *RemoteFetcher) handleRedirection(ctx context.Context, u *url.URL, resp *http.Response) (*url.URL, *http.Response, error) {
	if resp.StatusCode < 300 || resp.StatusCode > 399 {
		// not a redirection, return the original response
		return u, resp, nil
	}

	location := resp.Header.Get("Location")
	resp.Body.Close()
	if location != "" {
		redirectURL, err := url.Parse(location)
		if err == nil && !redirectURL.IsAbs() {
			// handle relative redirects
			redirectURL = u.ResolveReference(redirectURL)
		}
		if err == nil {
			newResp, err := f.headRequest(ctx, redirectURL.String())
			if err != nil {
				return nil, nil, utils.StatusErr("URL check failed: %v", err)
			}
			return redirectURL, newResp, nil
		}
	}

	return nil, nil, utils.StatusErr("got redirection response but bad location")
}

func (f *RemoteFetcher) headRequest(ctx context.Context, urlStr string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, urlStr, nil)
	if err != nil {
		return nil, err
	}
	return f.client.Do(req)
}

// HeadSingleFile checks if a URL points to a single regular remote file via a
// metadata-only request. A URL not pointing to a file (HTML content) returns
// (nil, nil) rather than an error.
func (f *RemoteFetcher) HeadSingleFile(ctx context.Context, u *url.URL) (*remoteFileInfo, error) {
	resp, err := f.headRequest(ctx, u.String())
	if err != nil {
		return nil, utils.StatusErr("URL check failed: %v", err)
	}
	finalURL, resp, err := f.handleRedirection(ctx, u, resp)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, utils.StatusErr("URL check failed with %s: %s", resp.Status, string(body))
	}

	// the Content-Type header should be present for files; an HTML page is
	// not a file
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return nil, nil
	}
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
		return nil, nil
	}

	approxSize := 0
	if length := resp.Header.Get("Content-Length"); length != "" {
		if size, err := strconv.Atoi(length); err == nil {
			approxSize = size
			if size > MaxFileSize {
				return nil, utils.LimitErr("remote file too large (%dKB >= max %dKB)",
					size/1024, MaxFileSize/1024)
			}
		}
	}

	path, err := validateFileURL(finalURL)
	if err != nil {
		return nil, err
	}
	return &remoteFileInfo{path: path, url: finalURL, approxSize: approxSize}, nil
}

// githubAPIGet issues a GitHub REST API request with the versioned accept
// headers, decoding the JSON response into out.
func (f *RemoteFetcher) githubAPIGet(ctx context.Context, urlStr string, what string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return utils.ParseErr("building GitHub API request: %v", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := f.client.Do(req)
	if err != nil {
		return utils.StatusErr("%s failed: %v", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		// probably getting rate limited by GitHub
		return utils.GitHubErr("%s failed with: %s, rate limited?", what, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return utils.GitHubErr("%s failed with: %s", what, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return utils.ParseErr("decoding %s response: %v", what, err)
	}
	return nil
}

// dissectGitHubURL parses a user-supplied GitHub repo URL into owner, repo,
// and tree (branch/tag), querying repo metadata for the default branch when
// no ref is given.
func (f *RemoteFetcher) dissectGitHubURL(ctx context.Context, u *url.URL) (string, string, string, error) {
	var segs []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}

	if len(segs) < 2 {
		return "", "", "", utils.GitHubErr("repo URL must contain owner and repo name")
	}
	if (len(segs) > 2 && segs[2] != "tree") || len(segs) > 4 {
		return "", "", "", utils.GitHubErr("repo URL should not carry path to specific file")
	}

	owner, repo := segs[0], segs[1]

	if len(segs) >= 4 && segs[2] == "tree" {
		return owner, repo, segs[3], nil
	}

	// ref not present, query repo metadata for the default branch
	var meta githubRepoMetaResponse
	err := f.githubAPIGet(ctx,
		fmt.Sprintf("%s/%s/%s", f.APIPrefix, owner, repo),
		"repo metadata query", &meta)
	if err != nil {
		return "", "", "", err
	}
	return owner, repo, meta.DefaultBranch, nil
}

// bfsTraverseTree walks the repo tree breadth-first starting from root,
// gathering admissible blobs into a result list. The first tree response's
// SHA is retained as the commit root used to build stable raw-content URLs.
func (f *RemoteFetcher) bfsTraverseTree(ctx context.Context, owner, repo, root string, limit int) ([]remoteFileInfo, bool, error) {
	type queued struct {
		path string
		tree string
	}

	var infos []remoteFileInfo
	skipped := false
	rootSha := ""
	queue := []queued{{path: "", tree: root}}

	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]

		var resp githubTreeResponse
		err := f.githubAPIGet(ctx,
			fmt.Sprintf("%s/%s/%s/git/trees/%s", f.APIPrefix, owner, repo, head.tree),
			"repo URL listing", &resp)
		if err != nil {
			return nil, skipped, err
		}

		if rootSha == "" {
			rootSha = resp.Sha
		}

		fullPath := func(parent, child string) string {
			if parent == "" {
				return child
			}
			return parent + "/" + child
		}

		for _, entry := range resp.Tree {
			switch entry.Type {
			case "blob":
				// regular file, add if it is a code file
				ext, ok := extensionOf(entry.Path)
				if !ok || !IsCodeExtension(ext) {
					continue
				}

				approxSize := 0 // 0 means unclear size
				if entry.Size != nil {
					approxSize = int(*entry.Size)
				}
				if approxSize > MaxFileSize {
					skipped = true
					continue // skip too-large file
				}

				blobPath := fullPath(head.path, entry.Path)
				rawURL, err := url.Parse(fmt.Sprintf("%s/%s/%s/%s/%s",
					f.RawPrefix, owner, repo, rootSha, blobPath))
				if err != nil {
					return nil, skipped, utils.ParseErr("composing raw content URL: %v", err)
				}

				infos = append(infos, remoteFileInfo{
					path:       repo + "/" + blobPath,
					url:        rawURL,
					approxSize: approxSize,
				})
				if len(infos) >= limit {
					return infos, skipped, nil
				}

			case "tree":
				// subdirectory, add to BFS queue
				queue = append(queue, queued{path: fullPath(head.path, entry.Path), tree: entry.Sha})

			default:
				// submodules ignored
			}
		}
	}

	return infos, skipped, nil
}

// ListGitHubRepo tries to treat the URL as a GitHub repo and list its files,
// taking at most limit files and skipping any blob larger than MaxFileSize.
// The second return value is false when the URL does not target the GitHub
// web host at all, signalling the caller to fall back to single-file probing.
func (f *RemoteFetcher) ListGitHubRepo(ctx context.Context, u *url.URL, limit int) ([]remoteFileInfo, bool, bool, error) {
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false, false, utils.ParseErr("unsupported URL scheme: %s", u.Scheme)
	}
	if u.Host != f.WebHost {
		// not a GitHub repo URL
		return nil, false, false, nil
	}

	owner, repo, tree, err := f.dissectGitHubURL(ctx, u)
	if err != nil {
		return nil, true, false, err
	}

	infos, skipped, err := f.bfsTraverseTree(ctx, owner, repo, tree, limit)
	if err != nil {
		return nil, true, skipped, err
	}
	if len(infos) == 0 {
		return nil, true, skipped, utils.GitHubErr("repo '%s' does not contain any code files", repo)
	}
	return infos, true, skipped, nil
}
