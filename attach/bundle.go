package attach

import (
	"bytes"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/clarigo/clarigo/errors"
	"github.com/clarigo/clarigo/logger"
)

// BuildArchive serializes a bundle into a zip archive. Every member file
// is written under its base name with no path prefix, in bundle order.
// Duplicate names are written as-is - the zip format permits repeated
// entries and readers see both payloads - but each duplicate is logged
// since most extraction tools surface only the last one.
//
// The archive filename is the sanitized owner display name plus suffix.
func BuildArchive(bundle Bundle, suffix string) (filename string, archiveBytes []byte, err error) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	seen := make(map[string]bool, len(bundle.Files))
	for _, file := range bundle.Files {
		if seen[file.Name] {
			logger.Warnw("duplicate filename in bundle, keeping both entries",
				"project", bundle.Owner.Name, "filename", file.Name)
		}
		seen[file.Name] = true

		entry, err := writer.Create(file.Name)
		if err != nil {
			return "", nil, errors.Wrapf(err, "creating bundle entry %s", file.Name)
		}
		if _, err := entry.Write(file.Data); err != nil {
			return "", nil, errors.Wrapf(err, "writing bundle entry %s", file.Name)
		}
	}

	if err := writer.Close(); err != nil {
		return "", nil, errors.Wrap(err, "finalizing bundle archive")
	}

	return SanitizeName(bundle.Owner.Name) + suffix, buf.Bytes(), nil
}

// SanitizeName makes a display name safe as a filename component:
// path separators, characters Windows filesystems refuse, and control
// characters become underscores. Spaces are kept.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteRune('_')
		case r < 0x20:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
