package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// CanonicalKey normalizes any surface form of an attachment reference down
// to the bare object key. Accepted forms:
//
//   - the canonical key itself ("expenses/farm-1/uuid-receipt.jpg")
//   - a key carrying one or more redundant bucket-name prefixes
//   - a full URL to the object, path-style or virtual-host style
//   - any of the above with a signed-access query suffix
//
// The result never embeds an access token, so stored references stay valid
// indefinitely while rendered URLs expire. Canonicalization is idempotent:
// applying it to its own output returns the same key.
func CanonicalKey(bucket, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", fmt.Errorf("empty attachment reference")
	}

	raw := ref
	decoded := false
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && u.Host != "" {
		// u.Path is already percent-decoded and excludes the query.
		// Unescaping its segments again would corrupt keys that contain a
		// literal percent sequence.
		raw = u.Path
		decoded = true
	} else {
		raw, _, _ = strings.Cut(ref, "?")
	}

	parts := strings.Split(raw, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if !decoded {
			if dec, err := url.PathUnescape(p); err == nil {
				p = dec
			}
		}
		segments = append(segments, p)
	}

	// Strip every redundant leading bucket-name segment, not just one:
	// references sometimes accumulate the prefix across copy round-trips.
	for len(segments) > 0 && strings.EqualFold(segments[0], bucket) {
		segments = segments[1:]
	}

	if len(segments) == 0 {
		return "", fmt.Errorf("no object key in reference %q", ref)
	}
	return strings.Join(segments, "/"), nil
}
