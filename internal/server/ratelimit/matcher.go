package ratelimit

import "strings"

// unlimitedPaths are never throttled for GET, whatever the configuration.
var unlimitedPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Resolve returns the tier name and shape for a request. Routes are tried in
// order; a route naming an unknown tier, or no matching route, yields the
// default tier.
func (c *Config) Resolve(method, path string) (string, Tier) {
	if method == "GET" && unlimitedPaths[path] {
		return TierUnlimited, Tier{}
	}

	for _, route := range c.Routes {
		if route.Method != method || !matchPattern(route.Pattern, path) {
			continue
		}
		if tier, ok := c.Tiers[route.Tier]; ok {
			return route.Tier, tier
		}
		break
	}
	return TierDefault, c.Default
}

// matchPattern reports whether path matches pattern segment by segment.
func matchPattern(pattern, path string) bool {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}
