package cache

import "strings"

const (
	GlobalKeyPrefix = "studyquiz"
	sessionSpace    = "session"
)

// Key joins parts under the global prefix, e.g. "studyquiz:session:abc".
// Empty parts are dropped.
func Key(parts ...string) string {
	kept := []string{GlobalKeyPrefix}
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ":")
}

// SessionKey is the redis key holding the view state of one session.
func SessionKey(sessionID string) string {
	return Key(sessionSpace, sessionID)
}

// SessionPattern matches every session key, for SCAN.
func SessionPattern() string {
	return Key(sessionSpace, "*")
}
