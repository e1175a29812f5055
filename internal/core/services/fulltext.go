package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// FullTextSeparator divides the header block from the body in exported text files.
var FullTextSeparator = strings.Repeat("=", 80)

// writeFullText writes a header block, the separator and the body to dir/name.
func writeFullText(dir, name string, header []string, body string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	var b strings.Builder
	for _, line := range header {
		b.WriteString("# ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\n" + FullTextSeparator + "\n\n")
	b.WriteString(body)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// StripHeader returns the text after the first separator line, trimmed.
// Text without a separator is returned unchanged.
func StripHeader(content string) string {
	_, body, found := strings.Cut(content, FullTextSeparator)
	if !found {
		return content
	}
	return strings.TrimSpace(body)
}

// comma formats n with thousands separators.
func comma(n int) string {
	return humanize.Comma(int64(n))
}
