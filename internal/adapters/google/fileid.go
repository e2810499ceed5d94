package google

import (
	"fmt"
	"net/url"
	"strings"
)

// ExtractFileID returns the Drive file id referenced by link. It understands
// the https://drive.google.com/file/d/<id>/view form, the ?id=<id> open and uc
// forms, and otherwise falls back to the second to last path segment.
func ExtractFileID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("%w: empty link", ErrInvalidLink)
	}

	if _, rest, ok := strings.Cut(link, "/d/"); ok {
		id, _, _ := strings.Cut(rest, "/")
		id, _, _ = strings.Cut(id, "?")
		if id != "" {
			return id, nil
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidLink, link)
	}

	if u, err := url.Parse(link); err == nil {
		if id := u.Query().Get("id"); id != "" {
			return id, nil
		}
		segments := strings.Split(u.Path, "/")
		if len(segments) >= 2 {
			if id := segments[len(segments)-2]; id != "" {
				return id, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidLink, link)
}
