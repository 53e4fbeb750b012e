package hackathons

import "strings"

// NormalizeFileRef turns a stored poster/certificate reference into something
// a browser can load. Absolute URLs pass through untouched; legacy relative
// paths get their backslashes flattened and are rooted under baseURL.
func NormalizeFileRef(ref, baseURL string) string {
	if ref == "" {
		return ""
	}
	ref = strings.ReplaceAll(ref, `\`, "/")
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}
