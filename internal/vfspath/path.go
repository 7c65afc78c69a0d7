// Package vfspath holds the VFS's pure string operations: directory-form
// and absolute-path checks, trailing-slash-insensitive comparison,
// canonicalization against a working directory, and host-path symlink
// detection. Nothing here touches the virtual namespace or the inode
// tree — these are leaf functions the rest of the VFS is built from.
package vfspath

import (
	"strings"

	"golang.org/x/sys/unix"
)

// IsAbsolute reports whether p starts with a separator.
func IsAbsolute(p string) bool {
	return len(p) > 0 && p[0] == '/'
}

// IsDirectoryString reports whether p is non-empty and both starts and
// ends with a separator, e.g. "/foo/".
func IsDirectoryString(p string) bool {
	return len(p) > 0 && p[0] == '/' && p[len(p)-1] == '/'
}

// TrimTrailingSlashes removes trailing separators from p, never reducing
// it below the empty string.
func TrimTrailingSlashes(p string) string {
	i := len(p)
	for i > 0 && p[i-1] == '/' {
		i--
	}
	return p[:i]
}

// normalizeForCompare maps the empty string to "/" and drops exactly one
// trailing separator, so pathcmp treats "/foo" and "/foo/" as equal.
func normalizeForCompare(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 && p[len(p)-1] == '/' {
		return p[:len(p)-1]
	}
	return p
}

// PathCmp compares a and b treating a single trailing slash as equivalent
// to none, and the empty string as equivalent to "/".
func PathCmp(a, b string) bool {
	return normalizeForCompare(a) == normalizeForCompare(b)
}

// Prefix is one element yielded by Split: a progressive prefix of the
// input path, and whether it is the final (full) one.
type Prefix struct {
	Path       string
	IsFullPath bool
}

// Split yields the progressive prefixes of p separated by "/". For an
// absolute path "/a/b/c" it yields "/", "/a", "/a/b", "/a/b/c" in order;
// for a relative path "a/b" it yields "a", "a/b". Only the last element
// has IsFullPath set. This replaces the source's callback-driven
// iteration with a slice, built in full up front, that the caller ranges over, per the VFS's
// preference for iterators over reentrant callbacks.
func Split(p string) []Prefix {
	if p == "" {
		return nil
	}
	absolute := IsAbsolute(p)
	var segments []string
	if absolute {
		segments = strings.Split(p[1:], "/")
	} else {
		segments = strings.Split(p, "/")
	}
	// Filter empties produced by repeated separators; Split is only ever
	// called on already-sanitized paths in practice, but stay defensive.
	filtered := segments[:0]
	for _, s := range segments {
		if s != "" {
			filtered = append(filtered, s)
		}
	}
	segments = filtered

	var out []Prefix
	if absolute {
		out = append(out, Prefix{Path: "/", IsFullPath: len(segments) == 0})
	}
	cur := ""
	for i, s := range segments {
		if absolute {
			cur += "/" + s
		} else if i == 0 {
			cur = s
		} else {
			cur += "/" + s
		}
		out = append(out, Prefix{Path: cur, IsFullPath: i == len(segments)-1})
	}
	return out
}

// Sanitize resolves input against cwd, walking "." and ".." tokens
// without ever touching the host filesystem. The result always starts
// with "/", never ends with "/" unless it is exactly "/", and never
// contains "//", "/./" or "/../".
func Sanitize(cwd, input string) string {
	full := input
	if !IsAbsolute(input) {
		full = cwd + "/" + input
	}

	var stack []string
	for _, tok := range strings.Split(full, "/") {
		switch tok {
		case "", ".":
			// dropped
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, tok)
		}
	}
	if len(stack) == 0 {
		return "/"
	}
	return "/" + strings.Join(stack, "/")
}

// ContainsHidden reports whether any component of an already-sanitized
// canonical path begins with a dot.
func ContainsHidden(canonicalPath string) bool {
	for _, part := range Split(canonicalPath) {
		base := part.Path
		if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
			base = base[idx+1:]
		}
		if strings.HasPrefix(base, ".") && base != "" {
			return true
		}
	}
	return false
}

// SymlinkCheck is the outcome of ContainsSymlink.
type SymlinkCheck struct {
	CriticalError  error
	NotFound       bool
	ContainsSymlink bool
}

// ContainsSymlink walks hostPath from root, lstat-ing each prefix. A
// missing prefix is reported as NotFound (non-critical, since a mounted
// subtree may legitimately not exist yet); any other lstat failure is
// reported as CriticalError. The walk stops at the first symlink found.
func ContainsSymlink(hostPath string) SymlinkCheck {
	if hostPath == "" || hostPath == "/" {
		return SymlinkCheck{}
	}
	segments := strings.Split(strings.TrimPrefix(hostPath, "/"), "/")
	cur := ""
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		cur += "/" + seg
		var st unix.Stat_t
		if err := unix.Lstat(cur, &st); err != nil {
			if err == unix.ENOENT {
				return SymlinkCheck{NotFound: true}
			}
			return SymlinkCheck{CriticalError: err}
		}
		if st.Mode&unix.S_IFMT == unix.S_IFLNK {
			return SymlinkCheck{ContainsSymlink: true}
		}
	}
	return SymlinkCheck{}
}
