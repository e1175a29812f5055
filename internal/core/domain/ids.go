package domain

import (
	"crypto/md5" //nolint:gosec // ids only, not a security boundary
	"encoding/hex"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var nonIdentifierChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// RecordID returns the deterministic id for a chunk of a pdf or webpage source:
// procurement_<type>_<md5(identifier)[:8]>_chunk_<index>.
func RecordID(identifier string, chunkIndex int, docType DocumentType) string {
	sum := md5.Sum([]byte(identifier)) //nolint:gosec // ids only
	return fmt.Sprintf("procurement_%s_%s_chunk_%d", docType, hex.EncodeToString(sum[:])[:8], chunkIndex)
}

// SavedHTMLRecordID returns the id for a chunk of a saved HTML file: html_<stem>_<index>.
func SavedHTMLRecordID(path string, chunkIndex int) string {
	return fmt.Sprintf("html_%s_%03d", FileStem(path), chunkIndex)
}

// URLIdentifier derives a filename-like identifier from a URL's host and path.
func URLIdentifier(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nonIdentifierChars.ReplaceAllString(rawURL, "_")
	}
	id := u.Host + u.EscapedPath()
	id = strings.NewReplacer("/", "_", ".", "_").Replace(id)
	return nonIdentifierChars.ReplaceAllString(id, "_")
}

// FileStem returns the base name of path without its extension.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
