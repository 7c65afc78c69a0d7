// Package inode holds the virtual namespace: a tree of Inodes keyed by
// canonicalized virtual path, stored in an arena so that parent
// references are indices rather than owning pointers (the tree is
// acyclic, but a parent pointer embedded by value would make Go's
// garbage collector's job needlessly hard and invites accidental
// sharing bugs — an index into the arena sidesteps both).
package inode

import (
	"errors"
	"sort"
	"strings"

	"github.com/oldphoenix/umsftpd/vfs/flags"
)

var (
	// ErrParameter is returned when Add is given a non-absolute path.
	ErrParameter = errors.New("inode: virtual_path and target_path must be absolute")
	// ErrAlreadyExists is returned when Add's exact virtual path already
	// has an inode.
	ErrAlreadyExists = errors.New("inode: virtual path already exists")
	// ErrFinalization is returned by Freeze on a store already frozen,
	// and by Add once the store has been frozen.
	ErrFinalization = errors.New("inode: store already frozen")
	// ErrNotFrozen is returned by Find before Freeze has run.
	ErrNotFrozen = errors.New("inode: store not yet frozen")
)

// noParent marks the root inode, which has no parent index.
const noParent = -1

// Inode is a node in the virtual namespace.
type Inode struct {
	VirtualPath string
	// TargetPath is the host path this inode projects, empty for a pure
	// virtual directory.
	TargetPath string
	FlagsSet   flags.Flag
	FlagsReset flags.Flag

	parent          int // index into Store.inodes, or noParent
	virtualChildren []string
}

// HasTarget reports whether the inode is a mountpoint rather than a pure
// virtual directory.
func (n *Inode) HasTarget() bool {
	return n.TargetPath != ""
}

// VirtualChildren returns the ordered base names of this inode's virtual
// children, as registered by Add.
func (n *Inode) VirtualChildren() []string {
	return n.virtualChildren
}

// Store holds every inode in a virtual namespace. It is built up via Add,
// then irreversibly Frozen before Find/iteration are permitted.
type Store struct {
	inodes []*Inode
	byPath map[string]int
	frozen bool
}

// NewStore returns an empty store seeded with the root inode.
func NewStore() *Store {
	s := &Store{byPath: make(map[string]int)}
	s.inodes = append(s.inodes, &Inode{VirtualPath: "/", parent: noParent})
	s.byPath["/"] = 0
	return s
}

func basename(p string) string {
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return "/"
	}
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		return strings.TrimSuffix(p, "/")
	}
	return p
}

func parentPath(p string) string {
	p = normalize(p)
	if p == "/" {
		return "/"
	}
	idx := strings.LastIndexByte(p, '/')
	if idx <= 0 {
		return "/"
	}
	return p[:idx]
}

// Add registers virtualPath with an optional targetPath and flag masks.
// Missing ancestors are auto-created as pure virtual directories; when an
// ancestor already exists the existing inode wins and is left untouched
// — only the exact leaf receives the caller's flags and target.
func (s *Store) Add(virtualPath, targetPath string, flagsSet, flagsReset flags.Flag) error {
	if s.frozen {
		return ErrFinalization
	}
	if !strings.HasPrefix(virtualPath, "/") {
		return ErrParameter
	}
	if targetPath != "" && !strings.HasPrefix(targetPath, "/") {
		return ErrParameter
	}

	virtualPath = normalize(virtualPath)
	if _, ok := s.byPath[virtualPath]; ok && virtualPath != "/" {
		return ErrAlreadyExists
	}
	if virtualPath == "/" {
		if s.inodes[0].HasTarget() || s.inodes[0].FlagsSet != 0 || s.inodes[0].FlagsReset != 0 {
			return ErrAlreadyExists
		}
		s.inodes[0].TargetPath = targetPath
		s.inodes[0].FlagsSet = flagsSet
		s.inodes[0].FlagsReset = flagsReset
		return nil
	}

	ancestors := ancestorChain(virtualPath)
	for i, p := range ancestors {
		if _, ok := s.byPath[p]; ok {
			continue
		}
		leaf := i == len(ancestors)-1
		n := &Inode{VirtualPath: p, parent: s.byPath[parentPath(p)]}
		if leaf {
			n.TargetPath = targetPath
			n.FlagsSet = flagsSet
			n.FlagsReset = flagsReset
		}
		idx := len(s.inodes)
		s.inodes = append(s.inodes, n)
		s.byPath[p] = idx
		parentIdx := n.parent
		s.inodes[parentIdx].virtualChildren = append(s.inodes[parentIdx].virtualChildren, basename(p))
	}
	return nil
}

// ancestorChain returns every prefix of virtualPath from its immediate
// child-of-root down to itself, e.g. "/a/b/c" -> ["/a", "/a/b", "/a/b/c"].
func ancestorChain(virtualPath string) []string {
	parts := strings.Split(strings.TrimPrefix(virtualPath, "/"), "/")
	out := make([]string, 0, len(parts))
	cur := ""
	for _, p := range parts {
		cur += "/" + p
		out = append(out, cur)
	}
	return out
}

// Freeze sorts the store lexicographically by virtual path and forbids
// further Add calls. Calling Freeze twice reports ErrFinalization but
// does not corrupt state.
func (s *Store) Freeze() error {
	if s.frozen {
		return ErrFinalization
	}
	sort.Slice(s.inodes, func(i, j int) bool {
		return s.inodes[i].VirtualPath < s.inodes[j].VirtualPath
	})
	s.byPath = make(map[string]int, len(s.inodes))
	oldToNew := make(map[*Inode]int, len(s.inodes))
	for i, n := range s.inodes {
		s.byPath[n.VirtualPath] = i
		oldToNew[n] = i
	}
	// parent indices were assigned against the pre-sort order, and every
	// Inode's parent field is a slice index into s.inodes, which just got
	// reshuffled. Rebuild it from the path.
	for _, n := range s.inodes {
		if n.VirtualPath == "/" {
			n.parent = noParent
			continue
		}
		n.parent = s.byPath[parentPath(n.VirtualPath)]
	}
	s.frozen = true
	return nil
}

// Find returns the inode at the exact canonical path, or nil if absent.
// Find is only permitted after Freeze.
func (s *Store) Find(virtualPath string) (*Inode, error) {
	if !s.frozen {
		return nil, ErrNotFrozen
	}
	idx, ok := s.byPath[normalize(virtualPath)]
	if !ok {
		return nil, nil
	}
	return s.inodes[idx], nil
}

// Parent returns n's parent inode, or nil for the root.
func (s *Store) Parent(n *Inode) *Inode {
	if n.parent == noParent {
		return nil
	}
	return s.inodes[n.parent]
}

// All returns every inode in sorted order. Only meaningful after Freeze.
func (s *Store) All() []*Inode {
	return s.inodes
}
