// Package blob holds the image byte stores that live outside the record
// store: a local directory and S3-compatible object storage.
package blob

import (
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// Key names a new blob as <prefix>/<uuid>-<slug><ext>. The slug comes from
// the uploaded file name; the extension from the sniffed content type, with
// the file name's extension as fallback.
func Key(prefix, filename, contentType string) string {
	ext := extensions[contentType]
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if ext == "" {
		ext = strings.ToLower(path.Ext(base))
	}
	name := slug.Make(strings.TrimSuffix(base, path.Ext(base)))

	var b strings.Builder
	if prefix != "" {
		b.WriteString(strings.Trim(prefix, "/"))
		b.WriteByte('/')
	}
	b.WriteString(uuid.NewString())
	if name != "" {
		b.WriteByte('-')
		b.WriteString(name)
	}
	b.WriteString(ext)
	return b.String()
}

// publicURL joins a base URL and a key.
func publicURL(baseURL, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(key, "/")
}
