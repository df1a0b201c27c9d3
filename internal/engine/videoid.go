package engine

import (
	"net/url"
	"regexp"
	"strings"
)

// VideoRef is a canonical 11-character YouTube video identifier.
type VideoRef string

var bareVideoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ResolveVideoID normalizes a raw identifier or share URL into a VideoRef.
// Accepted forms: a bare 11-char ID, youtu.be/<id>, youtube.com/watch?v=<id>,
// and youtube.com paths containing an "embed" or "shorts" segment.
// Returns false when the input matches none of them.
func ResolveVideoID(input string) (VideoRef, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}
	if bareVideoIDRE.MatchString(s) {
		return VideoRef(s), true
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())

	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		return nonEmpty(strings.Trim(u.Path, "/"))
	case strings.HasSuffix(host, "youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			return VideoRef(v), true
		}
		segs := strings.Split(strings.Trim(u.Path, "/"), "/")
		last := len(segs) - 1
		for _, seg := range segs[:last] {
			if seg == "embed" || seg == "shorts" {
				return nonEmpty(segs[last])
			}
		}
	}
	return "", false
}

func nonEmpty(id string) (VideoRef, bool) {
	if id == "" {
		return "", false
	}
	return VideoRef(id), true
}

// IsVideoID reports whether s is already a canonical 11-character ID.
func IsVideoID(s string) bool {
	return bareVideoIDRE.MatchString(s)
}
