package post

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

// EncodeImage renders an upload as a data URI: data:<mime>;base64,<payload>.
// An empty or generic declared type is replaced by one sniffed from the bytes.
func EncodeImage(img ImageUpload) string {
	mime := baseMime(img.MimeType)

	if mime == "" || mime == octetStream {
		mime = baseMime(mimetype.Detect(img.Data).String())
	}

	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mime) + base64.StdEncoding.EncodedLen(len(img.Data)))
	b.WriteString("data:")
	b.WriteString(mime)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(img.Data))

	return b.String()
}

func EncodeImages(imgs []ImageUpload) []string {
	out := make([]string, 0, len(imgs))

	for _, img := range imgs {
		out = append(out, EncodeImage(img))
	}

	return out
}

// strip parameters such as "; charset=utf-8"
func baseMime(raw string) string {
	m, _, _ := strings.Cut(raw, ";")
	return strings.ToLower(strings.TrimSpace(m))
}
