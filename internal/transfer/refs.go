// Package transfer moves content files to and from their storage backends and
// resolves the durable references stored on content records.
package transfer

import "strings"

const schemeSep = "://"

// BridgeRef builds the durable reference of a bridge-hosted file.
func BridgeRef(scheme, id string) string {
	return scheme + schemeSep + id
}

// ParseBridgeRef returns the bridge identifier when ref carries the given scheme.
func ParseBridgeRef(scheme, ref string) (string, bool) {
	id, ok := strings.CutPrefix(ref, scheme+schemeSep)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// SchemeOf returns the scheme of a scheme-prefixed reference. Plain object paths have none.
func SchemeOf(ref string) (string, bool) {
	scheme, rest, ok := strings.Cut(ref, schemeSep)
	if !ok || scheme == "" || rest == "" || strings.Contains(scheme, "/") {
		return "", false
	}
	return scheme, true
}

// IsBridgeRef reports whether ref is scheme-prefixed rather than a plain object path.
func IsBridgeRef(ref string) bool {
	_, ok := SchemeOf(ref)
	return ok
}
