package realtime

import "regexp"

// Local development origins are always accepted, matching browsers on the
// same host regardless of port.
var localhostOrigin = regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)

// originPolicy is the handshake allow-list. A request with no Origin header
// is trusted (non-browser clients); a present Origin must match the list.
type originPolicy struct {
	allowed map[string]struct{}
}

func newOriginPolicy(origins []string) *originPolicy {
	p := &originPolicy{allowed: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		if o != "" {
			p.allowed[o] = struct{}{}
		}
	}
	return p
}

func (p *originPolicy) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	if _, ok := p.allowed[origin]; ok {
		return true
	}
	return localhostOrigin.MatchString(origin)
}

// corsOrigins renders the policy in the shape the Socket.IO server options
// expect: explicit origins plus the localhost pattern.
func (p *originPolicy) corsOrigins() []any {
	origins := make([]any, 0, len(p.allowed)+1)
	for o := range p.allowed {
		origins = append(origins, o)
	}
	origins = append(origins, localhostOrigin)
	return origins
}
