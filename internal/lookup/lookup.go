// Package lookup walks a canonical virtual path against a frozen
// inode.Store, accumulating effective flags and locating the deepest
// mountpoint — the one piece of VFS logic every Operation runs first.
package lookup

import (
	"github.com/oldphoenix/umsftpd/internal/inode"
	"github.com/oldphoenix/umsftpd/internal/vfspath"
	"github.com/oldphoenix/umsftpd/vfs/errs"
	"github.com/oldphoenix/umsftpd/vfs/flags"
)

// Result is the outcome of a Lookup.
type Result struct {
	// Flags is the accumulated effective policy along the path.
	Flags flags.Flag
	// Mountpoint is the deepest ancestor (inclusive) carrying a target
	// path; nil if the path never passes through a mounted subtree.
	Mountpoint *inode.Inode
	// Inode is the terminal inode if the final path component matches
	// one exactly; nil if the tail extends into a mounted subtree past
	// the last known inode.
	Inode *inode.Inode
}

// Engine walks a frozen inode.Store.
type Engine struct {
	store     *inode.Store
	baseFlags flags.Flag
}

// New returns an Engine over store, seeding every lookup with baseFlags
// (ordinarily 0; a nonzero value is only used when the surrounding
// configuration explicitly sets a process-wide default policy).
func New(store *inode.Store, baseFlags flags.Flag) *Engine {
	return &Engine{store: store, baseFlags: baseFlags}
}

// Lookup walks every ancestor prefix of path in order, applying each
// inode's flags_set then flags_reset, tracking the deepest mountpoint and
// the terminal inode if the full path matches one exactly.
func (e *Engine) Lookup(path string) (Result, error) {
	if !vfspath.IsAbsolute(path) {
		return Result{}, errs.NewErrorf(errs.InternalError, "lookup: path %q is not absolute", path)
	}

	result := Result{Flags: e.baseFlags}
	for _, prefix := range vfspath.Split(path) {
		n, err := e.store.Find(prefix.Path)
		if err != nil {
			if err == inode.ErrNotFrozen {
				return Result{}, errs.NewErrorf(errs.InternalError, "lookup: inode store not frozen")
			}
			return Result{}, errs.NewErrorf(errs.InternalError, "lookup: %v", err)
		}
		if n == nil {
			continue
		}
		result.Flags = (result.Flags | n.FlagsSet) &^ n.FlagsReset
		if n.HasTarget() {
			result.Mountpoint = n
		}
		if prefix.IsFullPath {
			result.Inode = n
		}
	}
	return result, nil
}
