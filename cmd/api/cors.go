package main

import (
	"net/url"
	"strings"
)

// matchCORSOrigin reports whether origin is allowed by one of patterns.
// A pattern is "*", an exact origin, or scheme://*.domain for any subdomain.
func matchCORSOrigin(origin string, patterns []string) bool {
	o, err := url.Parse(origin)
	if err != nil || o.Scheme == "" || o.Host == "" {
		return false
	}
	for _, p := range patterns {
		if p == "*" {
			return true
		}
		if p == origin {
			return true
		}
		pu, err := url.Parse(p)
		if err != nil || pu.Scheme != o.Scheme {
			continue
		}
		if suffix, ok := strings.CutPrefix(pu.Host, "*."); ok {
			if strings.HasSuffix(o.Host, "."+suffix) {
				return true
			}
		}
	}
	return false
}
