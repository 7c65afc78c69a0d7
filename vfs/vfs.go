// Package vfs is the façade the SFTP session layer drives: it owns the
// inode store, the lookup engine, the current working directory and the
// handle quota, and exposes the operations specified for a session
// (opendir/readdir, open/read/write, stat, chdir, close_handle) plus the
// init/add_inode/freeze_inodes lifecycle that precedes them.
package vfs

import (
	"github.com/google/uuid"

	"github.com/oldphoenix/umsftpd/internal/inode"
	"github.com/oldphoenix/umsftpd/internal/logger"
	"github.com/oldphoenix/umsftpd/internal/lookup"
	"github.com/oldphoenix/umsftpd/internal/vfsmetrics"
	"github.com/oldphoenix/umsftpd/vfs/flags"
)

// DefaultHandleQuota is the ceiling on simultaneously open handles absent
// explicit configuration, matching the source's default.
const DefaultHandleQuota = 10

// VFS is one session's view of the virtual namespace. It is not safe for
// concurrent use: the source's single-threaded cooperative model applies
// here too — one VFS serves one SFTP session, driven serially by that
// session's own event loop.
type VFS struct {
	store  *inode.Store
	engine *lookup.Engine
	metric *vfsmetrics.Recorder

	cwd string

	handles      map[uuid.UUID]Handle
	handleQuota  int

	frozen bool
}

// Option configures a VFS at construction time.
type Option func(*VFS)

// WithHandleQuota overrides DefaultHandleQuota.
func WithHandleQuota(quota int) Option {
	return func(v *VFS) { v.handleQuota = quota }
}

// WithMetrics attaches a vfsmetrics.Recorder that observes handle-quota
// pressure and lookup latency.
func WithMetrics(m *vfsmetrics.Recorder) Option {
	return func(v *VFS) { v.metric = m }
}

// New creates a VFS with an empty, unfrozen inode store and cwd "/".
// AddInode and FreezeInodes must run before any Operation.
func New(baseFlags flags.Flag, opts ...Option) *VFS {
	store := inode.NewStore()
	v := &VFS{
		store:       store,
		cwd:         "/",
		handles:     make(map[uuid.UUID]Handle),
		handleQuota: DefaultHandleQuota,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.engine = lookup.New(store, baseFlags)
	return v
}

// AddInode registers a virtual path with an optional host target and
// flag masks, before FreezeInodes is called.
func (v *VFS) AddInode(virtualPath, targetPath string, flagsSet, flagsReset flags.Flag) error {
	if err := v.store.Add(virtualPath, targetPath, flagsSet, flagsReset); err != nil {
		return translateInodeErr(err)
	}
	return nil
}

// FreezeInodes sorts the inode store and forbids further AddInode calls;
// it must run before any lookup-dependent Operation.
func (v *VFS) FreezeInodes() error {
	if err := v.store.Freeze(); err != nil {
		return translateInodeErr(err)
	}
	v.frozen = true
	return nil
}

// Cwd returns the session's current working directory.
func (v *VFS) Cwd() string {
	return v.cwd
}

// Lookup runs the LookupEngine directly against an already-canonical
// path, without the policy checks Operations layer on top. Exposed
// mainly for callers (and tests) that want the raw flags/mountpoint
// accounting spec.md's LookupResult describes.
func (v *VFS) Lookup(canonicalPath string) (lookup.Result, error) {
	return v.engine.Lookup(canonicalPath)
}

// HandleCount returns the number of currently open handles.
func (v *VFS) HandleCount() int {
	return len(v.handles)
}

// Free releases every still-open handle, for use on session teardown.
// It must not touch any host resource twice even if a caller already
// closed some handles individually.
func (v *VFS) Free() {
	n := len(v.handles)
	for id, h := range v.handles {
		closeHostResource(h)
		delete(v.handles, id)
	}
	v.metric.DecrementOpenHandles(n)
}

func closeHostResource(h Handle) {
	switch hh := h.(type) {
	case *DirHandle:
		if hh.hostDir != nil {
			if err := hh.hostDir.Close(); err != nil {
				logger.Warnf("vfs: closing directory handle for %s: %v", hh.virtualPath, err)
			}
		}
	case *FileHandle:
		if hh.host != nil {
			if err := hh.host.Close(); err != nil {
				logger.Warnf("vfs: closing file handle for %s: %v", hh.virtualPath, err)
			}
		}
	}
}

func translateInodeErr(err error) error {
	switch err {
	case inode.ErrParameter:
		return NewErrorf(InternalError, "parameter error: %v", err)
	case inode.ErrAlreadyExists:
		return NewErrorf(InternalError, "already exists: %v", err)
	case inode.ErrFinalization:
		return NewErrorf(InternalError, "finalization error: %v", err)
	default:
		return NewErrorf(InternalError, "%v", err)
	}
}
