// Package urlsafety classifies untrusted URL strings before they are used
// for redirects or rendered as external links.  Two separate predicates are
// provided because the two contexts carry different risk: a post-login
// redirect target must stay on this application's own origin, while a stored
// external URL (for example an event image) may point anywhere but must be a
// well-formed, credential-free HTTP(S) resource.  All functions are pure
// string inspection: they never perform network access and never return an
// error, so malformed input is always classified rather than rejected.
package urlsafety

import (
	"net/url"
	"strings"
)

// IsLocalURL reports whether s is safe to use as a same-origin redirect
// target.  It returns false when s is empty or whitespace-only, does not
// begin with a single forward slash, begins with "//" or "/\" (forms that
// browsers may treat as protocol-relative absolute URLs), or contains "://"
// anywhere (an embedded scheme marker used to smuggle an absolute URL).
func IsLocalURL(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	if !strings.HasPrefix(s, "/") {
		return false
	}
	if strings.HasPrefix(s, "//") || strings.HasPrefix(s, `/\`) {
		return false
	}
	return !strings.Contains(s, "://")
}

// SafeReturnURL returns s unchanged when IsLocalURL accepts it and fallback
// otherwise.  Every redirect-producing code path is expected to route its
// target through this function; redirecting on a raw request value bypasses
// the open-redirect protection this package exists to provide.
func SafeReturnURL(s, fallback string) string {
	if IsLocalURL(s) {
		return s
	}
	return fallback
}

// IsSafeExternalURL reports whether s may be stored or rendered as an
// external hyperlink or image source.  An empty or whitespace-only string is
// treated as "no link" and accepted.  Anything else must parse as an
// absolute URL with scheme http or https, a non-empty host and no embedded
// userinfo (the "user:password@host" phishing form).  Schemes such as
// javascript:, data: and file: are rejected by the scheme check.
func IsSafeExternalURL(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	return u.User == nil
}
