package code_group

import (
	"archive/tar"
	"bytes"
	"io"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/josehu07/codetective/utils"
)

// archiveEntry is one admissible code file produced by an archive decoder.
type archiveEntry struct {
	path    string
	ext     string
	content string
}

// listUploadFiles extracts all valid code files from the given file list,
// filtering by extension and size cap, stopping at the remaining quota.
func (g *CodeGroup) listUploadFiles(files []UploadFile) ([]archiveEntry, error) {
	var entries []archiveEntry
	limit := g.remainingQuota()

	for _, file := range files {
		if file.Name == "" {
			return nil, utils.ParseErr("encountered empty file name")
		}

		ext, ok := extensionOf(file.Name)
		if !ok || !IsCodeExtension(ext) {
			continue
		}
		if len(file.Data) > MaxFileSize {
			g.setSkipped()
			continue
		}

		entries = append(entries, archiveEntry{
			path:    file.Name,
			ext:     ext,
			content: string(file.Data),
		})
		if len(entries) >= limit {
			break
		}
	}

	if len(entries) == 0 {
		return nil, utils.UploadErr("uploaded files do not contain any code files")
	}
	return entries, nil
}

// extractArchive tries to treat the input file as an archive and extract
// valid code files from it. The second return value is false when the file's
// extension matches no supported container format, signalling the caller to
// fall back to other interpretations. An archive that decodes with zero
// admissible entries is an Upload error here, which is distinct from "not an
// archive at all".
func (g *CodeGroup) extractArchive(file UploadFile) ([]archiveEntry, bool, error) {
	if file.Name == "" {
		return nil, false, utils.ParseErr("encountered empty file name")
	}

	ext, ok := extensionOf(file.Name)
	if !ok {
		return nil, false, nil
	}

	var entries []archiveEntry
	var err error
	switch ext {
	case ".zip":
		entries, err = g.extractZip(file.Data)
	case ".tar":
		entries, err = g.extractTar(bytes.NewReader(file.Data))
	case ".gz", ".tgz":
		var gz *gzip.Reader
		gz, err = gzip.NewReader(bytes.NewReader(file.Data))
		if err != nil {
			return nil, false, utils.UploadErr("failed to read uploaded gzip archive: %v", err)
		}
		entries, err = g.extractTar(gz)
	case ".7z":
		entries, err = g.extract7z(file.Data)
	default:
		// unsupported archive type
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}
	if len(entries) == 0 {
		return nil, false, utils.UploadErr("uploaded archive does not contain any code files")
	}
	return entries, true, nil
}

// extractZip extracts code files from a zip archive.
func (g *CodeGroup) extractZip(data []byte) ([]archiveEntry, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, utils.UploadErr("failed to read uploaded zip archive: %v", err)
	}

	var entries []archiveEntry
	limit := g.remainingQuota()

	for _, file := range archive.File {
		if !file.Mode().IsRegular() {
			continue
		}
		ext, ok := extensionOf(file.Name)
		if !ok || !IsCodeExtension(ext) {
			continue
		}
		if file.UncompressedSize64 > MaxFileSize {
			g.setSkipped()
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, utils.UploadErr("failed to read file '%s' from zip archive: %v",
				file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, utils.UploadErr("failed to read file '%s' from zip archive: %v",
				file.Name, err)
		}

		entries = append(entries, archiveEntry{
			path:    file.Name,
			ext:     ext,
			content: string(content),
		})
		if len(entries) >= limit {
			break
		}
	}

	return entries, nil
}

// extractTar extracts code files from a tar archive stream (possibly layered
// under a gzip decoder).
func (g *CodeGroup) extractTar(r io.Reader) ([]archiveEntry, error) {
	archive := tar.NewReader(r)

	var entries []archiveEntry
	limit := g.remainingQuota()

	for {
		header, err := archive.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, utils.UploadErr("failed to read entry from tar archive: %v", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}
		ext, ok := extensionOf(header.Name)
		if !ok || !IsCodeExtension(ext) {
			continue
		}
		if header.Size > MaxFileSize {
			g.setSkipped()
			continue
		}

		content, err := io.ReadAll(archive)
		if err != nil {
			return nil, utils.UploadErr("failed to read file '%s' from tar archive: %v",
				header.Name, err)
		}

		entries = append(entries, archiveEntry{
			path:    header.Name,
			ext:     ext,
			content: string(content),
		})
		if len(entries) >= limit {
			break
		}
	}

	return entries, nil
}

// extract7z extracts code files from a 7z archive. Every entry is streamed
// through decompression even if skipped, because solid-compressed archives
// require sequential full decompression regardless of which entries are kept.
func (g *CodeGroup) extract7z(data []byte) ([]archiveEntry, error) {
	archive, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, utils.UploadErr("failed to read uploaded 7z archive: %v", err)
	}

	var entries []archiveEntry
	limit := g.remainingQuota()
	full := false

	for _, file := range archive.File {
		if file.FileInfo().IsDir() {
			continue // directory entries carry no stream
		}

		rc, err := file.Open()
		if err != nil {
			return nil, utils.UploadErr("failed to decode from 7z archive, password issue?")
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, utils.UploadErr("failed to decode from 7z archive, password issue?")
		}

		if full {
			continue // decompressed, then discarded
		}
		ext, ok := extensionOf(file.Name)
		if !ok || !IsCodeExtension(ext) {
			continue
		}
		if len(content) > MaxFileSize {
			g.setSkipped()
			continue
		}

		entries = append(entries, archiveEntry{
			path:    file.Name,
			ext:     ext,
			content: string(content),
		})
		if len(entries) >= limit {
			full = true
		}
	}

	return entries, nil
}
