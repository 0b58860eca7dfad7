package code_group

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/josehu07/codetective/utils"
)

// Hardcoded limits on the scale of imported files.
const (
	MaxNumFiles = 100
	MaxFileSize = 100 * 1024 // 100KB
)

// TextboxPath is the fixed synthetic path used for pasted code.
const TextboxPath = "code from the textbox"

// TextboxExt is the synthetic extension carried by pasted code.
const TextboxExt = "textbox"

// CodeFile is a handle to a single code file, either holding already
// materialized local content or pointing at a remote raw URL whose content is
// fetched lazily on demand.
type CodeFile struct {
	ext     string
	content string

	remote     bool
	url        *url.URL
	approxSize int // 0 means unknown
}

// NewLocalFile creates a code file whose content is already materialized.
func NewLocalFile(ext string, content string) *CodeFile {
	return &CodeFile{ext: ext, content: content}
}

// NewRemoteFile creates a code file backed by a raw content URL.
func NewRemoteFile(u *url.URL, approxSize int) *CodeFile {
	return &CodeFile{remote: true, url: u, approxSize: approxSize}
}

// GetSize returns the (approximate) size in bytes of the file. The boolean is
// false when the size is unknown (remote file without a length header).
func (f *CodeFile) GetSize() (int, bool) {
	if f.remote {
		if f.approxSize == 0 {
			return 0, false
		}
		return f.approxSize, true
	}
	return len(f.content), true
}

// GetExt returns the file extension (with leading dot for real files).
func (f *CodeFile) GetExt() (string, bool) {
	if f.remote {
		return urlExtension(f.url)
	}
	return f.ext, true
}

// IsRemote reports whether the file's content lives behind a URL.
func (f *CodeFile) IsRemote() bool {
	return f.remote
}

// LangName returns the display language name for the file. Pasted textbox
// content gets a content-based guess since it carries no real extension.
func (f *CodeFile) LangName() string {
	if !f.remote && f.ext == TextboxExt {
		return ContentLangName(f.content)
	}
	ext, ok := f.GetExt()
	return LangNameOf(ext, ok)
}

// Content fetches the actual text content of the file, making a web request
// for remote files. Fetched remote content is cached so that retry waves do
// not re-download.
func (f *CodeFile) Content(ctx context.Context, client *http.Client, cache *ContentCache) (string, error) {
	if !f.remote {
		return f.content, nil
	}

	key := xxh3.HashString(f.url.String())
	if cache != nil {
		if text, ok := cache.Get(key); ok {
			return text, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url.String(), nil)
	if err != nil {
		return "", utils.ParseErr("building content fetch request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", utils.StatusErr("file content fetch failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", utils.StatusErr("file content read failed: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// probably network error or authorization failure
		return "", utils.StatusErr("file content fetch failed with %s: %s",
			resp.Status, string(body))
	}

	text := string(body)
	if cache != nil {
		cache.Put(key, text)
	}
	return text, nil
}

// NamedFile pairs a unique path with its code file handle.
type NamedFile struct {
	Path string
	File *CodeFile
}

// CodeGroup is the central registry owning all imported files, independent of
// their origin. It enforces the global count cap, the per-file size cap, and
// path uniqueness.
type CodeGroup struct {
	mu      sync.RWMutex
	files   map[string]*CodeFile
	skipped bool

	fetcher *RemoteFetcher
	client  *http.Client
	cache   *ContentCache
}

// NewCodeGroup creates an empty code importer with no files added yet.
func NewCodeGroup() *CodeGroup {
	return &CodeGroup{
		files:   make(map[string]*CodeFile),
		fetcher: NewRemoteFetcher(),
		client:  &http.Client{},
		cache:   NewContentCache(),
	}
}

// NumFiles returns the number of imported files.
func (g *CodeGroup) NumFiles() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.files)
}

// HasSkipped reports whether any candidate file was dropped for exceeding
// the per-file size cap.
func (g *CodeGroup) HasSkipped() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.skipped
}

// TotalSize returns the approximate total size in bytes of imported files.
// The boolean is false if any constituent size is unknown.
func (g *CodeGroup) TotalSize() (int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	total := 0
	for _, file := range g.files {
		size, known := file.GetSize()
		if !known {
			return 0, false
		}
		total += size
	}
	return total, true
}

// Reset clears the imported files and the skipped flag. Idempotent.
func (g *CodeGroup) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.files = make(map[string]*CodeFile)
	g.skipped = false
}

// SortedFiles returns the imported files sorted lexicographically by path,
// for deterministic rendering.
func (g *CodeGroup) SortedFiles() []NamedFile {
	g.mu.RLock()
	defer g.mu.RUnlock()

	files := make([]NamedFile, 0, len(g.files))
	for path, file := range g.files {
		files = append(files, NamedFile{Path: path, File: file})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files
}

// FetchContent fetches the text content of a file through the group's shared
// HTTP client and remote-content cache.
func (g *CodeGroup) FetchContent(ctx context.Context, file *CodeFile) (string, error) {
	return file.Content(ctx, g.client, g.cache)
}

// ImportTextbox populates the importer with plain textbox content under the
// fixed synthetic path.
func (g *CodeGroup) ImportTextbox(content string) error {
	if strings.TrimSpace(content) == "" {
		return utils.ParseErr("textbox content is empty")
	}
	if g.remainingQuota() == 0 {
		// cap reached, candidate silently dropped
		return nil
	}
	return g.addFile(TextboxPath, NewLocalFile(TextboxExt, content))
}

// ImportRemote populates the importer with a remote file or a repo of files.
// A GitHub repo interpretation is attempted first, then a single raw file.
func (g *CodeGroup) ImportRemote(ctx context.Context, urlStr string) error {
	if !isASCII(urlStr) {
		return utils.AsciiErr("URL input contains non-ASCII characters")
	}
	if g.remainingQuota() == 0 {
		// cap reached, candidates silently dropped
		return nil
	}

	u, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil {
		return utils.ParseErr("invalid URL: %v", err)
	}
	if u.Scheme == "" {
		// default to prepending an 'https://' scheme
		u, err = url.Parse("https://" + strings.TrimSpace(urlStr))
		if err != nil {
			return utils.ParseErr("invalid URL: %v", err)
		}
	}

	// first try as URL to a GitHub repo
	infos, isGitHub, skipped, err := g.fetcher.ListGitHubRepo(ctx, u, g.remainingQuota())
	if skipped {
		g.setSkipped()
	}
	if err != nil {
		return err
	}
	if isGitHub {
		for _, info := range infos {
			if err := g.addFile(info.path, NewRemoteFile(info.url, info.approxSize)); err != nil {
				return err
			}
		}
		return nil
	}

	// then try as URL to a single raw file
	info, err := g.fetcher.HeadSingleFile(ctx, u)
	if err != nil {
		if utils.ErrorIsKind(err, utils.ErrLimit) {
			g.setSkipped()
		}
		return err
	}
	if info != nil {
		return g.addFile(info.path, NewRemoteFile(info.url, info.approxSize))
	}

	return utils.ParseErr("URL not pointing to raw file or GitHub repo")
}

// UploadFile is one user-supplied file: its name and raw bytes.
type UploadFile struct {
	Name string
	Data []byte
}

// ImportUpload populates the importer with an uploaded file list. A single
// supplied file is first attempted as an archive; otherwise each file is
// treated as a standalone code file filtered by extension.
func (g *CodeGroup) ImportUpload(files []UploadFile) error {
	if g.remainingQuota() == 0 {
		// cap reached, candidates silently dropped
		return nil
	}

	// first try as a single archive file
	if len(files) == 1 {
		entries, isArchive, err := g.extractArchive(files[0])
		if err != nil {
			return err
		}
		if isArchive {
			for _, entry := range entries {
				if err := g.addFile(entry.path, NewLocalFile(entry.ext, entry.content)); err != nil {
					return err
				}
			}
			return nil
		}
	}

	// then try as a list of files, only considering valid code files within
	entries, err := g.listUploadFiles(files)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := g.addFile(entry.path, NewLocalFile(entry.ext, entry.content)); err != nil {
			return err
		}
	}
	return nil
}

// addFile inserts a file under a unique path. Insertion fails (and does not
// overwrite) if the path is already present.
func (g *CodeGroup) addFile(path string, file *CodeFile) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.files[path]; ok {
		return utils.ExistsErr("file name '%s' already exists", path)
	}
	g.files[path] = file
	return nil
}

// remainingQuota returns how many more files producers may still list before
// hitting the global count cap. Producers stop listing once it reaches zero,
// so the registry itself never sees an over-cap insertion.
func (g *CodeGroup) remainingQuota() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	remaining := MaxNumFiles - len(g.files)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (g *CodeGroup) setSkipped() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.skipped = true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

// ContentCache is an in-memory cache of fetched remote file contents, keyed
// by a hash of the source URL.
type ContentCache struct {
	mu      sync.RWMutex
	entries map[uint64]string
}

func NewContentCache() *ContentCache {
	return &ContentCache{entries: make(map[uint64]string)}
}

func (c *ContentCache) Get(key uint64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.entries[key]
	return text, ok
}

func (c *ContentCache) Put(key uint64, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = text
}

// urlExtension parses the file extension from a URL's last path segment.
func urlExtension(u *url.URL) (string, bool) {
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 {
		return "", false
	}
	return extensionOf(segs[len(segs)-1])
}
