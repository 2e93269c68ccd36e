package video

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Reference is the normalized identifier extracted from a user-supplied
// video URL. It is immutable once extracted.
type Reference string

// referenceIDRegex matches the 11-character video id YouTube uses
var referenceIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseReference extracts a Reference from a raw URL string.
// Recognized shapes:
//
//	https://www.youtube.com/watch?v=<id>
//	https://youtu.be/<id>
//	https://www.youtube.com/shorts/<id>
//	https://www.youtube.com/embed/<id>
//
// This is a pure check and performs no network calls.
func ParseReference(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("url is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("malformed url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		default:
			return "", fmt.Errorf("unrecognized youtube path %q", u.Path)
		}
	default:
		return "", fmt.Errorf("host %q is not a youtube host", u.Hostname())
	}

	id = strings.Trim(id, "/")
	if !referenceIDRegex.MatchString(id) {
		return "", fmt.Errorf("could not extract a video id from %q", raw)
	}

	return Reference(id), nil
}

// String returns the raw video id.
func (r Reference) String() string {
	return string(r)
}

// WatchURL returns the canonical watch URL for the reference.
func (r Reference) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + string(r)
}
