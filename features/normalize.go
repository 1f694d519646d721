package features

import "strings"

// URLParts is a URL after scheme injection, split the way the features see it.
type URLParts struct {
	URL    string `json:"url"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// Normalize prepends "http://" when raw has no scheme separator and splits
// the result into host and path. Both are kept as raw text, never decoded.
// Text before "://" that is not a valid scheme leaves no authority at all
// and everything counts as path.
func Normalize(raw string) URLParts {
	s := raw
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	sep := strings.Index(s, "://")
	scheme := s[:sep]
	if !validScheme(scheme) {
		return URLParts{URL: s, Path: cutParams(cutQuery(s), "")}
	}

	rest := s[sep+len("://"):]
	authority, path := rest, ""
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		authority, path = rest[:i], cutParams(cutQuery(rest[i:]), scheme)
	}

	return URLParts{URL: s, Domain: hostOf(authority), Path: path}
}

// hostOf strips userinfo and port from a raw authority. Brackets around an
// IPv6 literal are dropped; an unterminated bracket yields "".
func hostOf(authority string) string {
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		authority = authority[i+1:]
	}
	if strings.HasPrefix(authority, "[") {
		end := strings.IndexByte(authority, ']')
		if end < 0 {
			return ""
		}
		return authority[1:end]
	}
	if i := strings.IndexByte(authority, ':'); i >= 0 {
		authority = authority[:i]
	}
	return authority
}

// paramSchemes carry ";params" on the last path segment, which is not
// part of the path.
var paramSchemes = map[string]bool{
	"": true, "http": true, "https": true, "ftp": true, "sftp": true,
	"shttp": true, "imap": true, "rtsp": true, "rtspu": true, "sip": true,
	"sips": true, "mms": true, "tel": true, "hdl": true, "prospero": true,
}

func cutParams(path, scheme string) string {
	if !paramSchemes[strings.ToLower(scheme)] {
		return path
	}
	last := strings.LastIndexByte(path, '/')
	if i := strings.IndexByte(path[last+1:], ';'); i >= 0 {
		return path[:last+1+i]
	}
	return path
}

func cutQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}

// validScheme follows RFC 3986: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." )
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
