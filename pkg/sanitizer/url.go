package sanitizer

import (
	"regexp"
	"strings"
)

var reAbsoluteURL = regexp.MustCompile(`(?i)^https?://`)

// NormalizeImageURL resolves an image reference against baseURL.
// Absolute URLs pass through unchanged; relative paths are joined to
// the base with exactly one slash. Empty input stays empty.
func NormalizeImageURL(baseURL, image string) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}
	if reAbsoluteURL.MatchString(image) {
		return image
	}

	base := strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(image, "/") {
		image = "/" + image
	}
	return base + image
}

// NormalizeImageURLs maps NormalizeImageURL over a slice, dropping
// entries that normalize to empty.
func NormalizeImageURLs(baseURL string, images []string) []string {
	if len(images) == 0 {
		return images
	}

	out := make([]string, 0, len(images))
	for _, image := range images {
		if normalized := NormalizeImageURL(baseURL, image); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}
