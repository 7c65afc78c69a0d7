package vfs

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/oldphoenix/umsftpd/internal/logger"
	"github.com/oldphoenix/umsftpd/internal/lookup"
	"github.com/oldphoenix/umsftpd/internal/vfspath"
	"github.com/oldphoenix/umsftpd/internal/vfstrace"
	"github.com/oldphoenix/umsftpd/vfs/flags"
)

// resolve implements the prologue shared by Chdir, OpenDir, Stat and Open
// (spec's HandleFactory steps 1-7): it enforces the handle quota
// unconditionally, even for Chdir/Stat which never allocate a handle
// themselves, matching vfs_open_node's first action in the source.
func (v *VFS) resolve(path string) (canonical string, res lookup.Result, mapped string, err error) {
	if len(v.handles) >= v.handleQuota {
		return "", lookup.Result{}, "", NewError(OutOfHandles)
	}

	canonical = vfspath.Sanitize(v.cwd, path)

	lookupStart := time.Now()
	res, lookupErr := v.engine.Lookup(canonical)
	v.metric.RecordLookup(float64(time.Since(lookupStart).Microseconds()) / 1000)
	if lookupErr != nil {
		return "", lookup.Result{}, "", NewErrorf(InternalError, "resolve %q: %v", path, lookupErr)
	}

	if res.Flags.Has(flags.FilterAll) {
		return "", lookup.Result{}, "", NewError(NoSuchFileOrDirectory)
	}
	if res.Flags.Has(flags.FilterHidden) && vfspath.ContainsHidden(canonical) {
		return "", lookup.Result{}, "", NewError(PermissionDenied)
	}
	if res.Inode == nil && res.Mountpoint == nil {
		return "", lookup.Result{}, "", NewError(NoSuchFileOrDirectory)
	}

	if res.Mountpoint != nil {
		mapped = mapToHostPath(res.Mountpoint.VirtualPath, res.Mountpoint.TargetPath, canonical)

		if !res.Flags.Has(flags.AllowSymlinks) {
			check := vfspath.ContainsSymlink(mapped)
			if check.CriticalError != nil {
				return "", lookup.Result{}, "", NewErrorf(InternalError, "symlink check on %q: %v", mapped, check.CriticalError)
			}
			if check.ContainsSymlink {
				return "", lookup.Result{}, "", NewError(NoSuchFileOrDirectory)
			}
		}
	}

	return canonical, res, mapped, nil
}

// Chdir canonicalizes path, verifies it names a directory (virtual or
// host), and on success updates the session's cwd.
func (v *VFS) Chdir(ctx context.Context, path string) error {
	_, end := vfstrace.Start(ctx, "chdir")
	var err error
	defer func() { end(err) }()

	canonical, res, mapped, rerr := v.resolve(path)
	if rerr != nil {
		err = rerr
		return err
	}

	if res.Inode != nil {
		v.cwd = canonical
		return nil
	}

	var st unix.Stat_t
	if statErr := unix.Stat(mapped, &st); statErr != nil {
		err = translateErrno(statErr)
		return err
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		err = NewError(NotADirectory)
		return err
	}
	v.cwd = canonical
	return nil
}

// OpenDir runs the shared prologue and opens a DirHandle, tolerating a
// missing host directory when the resolved node is itself a virtual
// directory.
func (v *VFS) OpenDir(ctx context.Context, path string) (*DirHandle, error) {
	_, end := vfstrace.Start(ctx, "opendir")
	var err error
	defer func() { end(err) }()

	canonical, res, mapped, rerr := v.resolve(path)
	if rerr != nil {
		err = rerr
		return nil, err
	}

	var hostDir *os.File
	if mapped != "" {
		f, openErr := os.Open(mapped)
		if openErr != nil {
			if res.Inode == nil {
				err = translateOSErr(openErr)
				return nil, err
			}
			// Lenient branch: the node is a virtual directory, so a
			// missing or inaccessible host backing is tolerated and the
			// listing falls back to virtual_children alone. Do not
			// resurrect a strict failure path here.
		} else {
			hostDir = f
		}
	}

	h := &DirHandle{
		id:          uuid.New(),
		virtualPath: canonical,
		flags:       res.Flags,
		hostDir:     hostDir,
		inode:       res.Inode,
	}
	if res.Inode != nil {
		h.seenNames = make(map[string]bool, len(res.Inode.VirtualChildren()))
		for _, name := range res.Inode.VirtualChildren() {
			h.seenNames[name] = true
		}
	}

	v.handles[h.id] = h
	v.metric.IncrementOpenHandles()
	return h, nil
}

// ReadDir advances h's cursor and returns the next merged entry: first
// every virtual child in insertion order, then surviving host entries
// (skipping "." / ".." / shadowed names / unstat-able entries), then
// EOF.
func (v *VFS) ReadDir(ctx context.Context, h *DirHandle) (DirEnt, error) {
	_, end := vfstrace.Start(ctx, "readdir")
	var err error
	defer func() { end(err) }()

	if h.st == stateClosed {
		err = NewErrorf(InternalError, "readdir: handle already closed")
		return DirEnt{}, err
	}

	if h.inode != nil {
		children := h.inode.VirtualChildren()
		if h.virtualChildIndex < len(children) {
			name := children[h.virtualChildIndex]
			h.virtualChildIndex++
			mode := os.FileMode(0o555)
			if !h.flags.Has(flags.ReadOnly) {
				mode = 0o755
			}
			return DirEnt{Filename: name, IsFile: false, Mode: mode}, nil
		}
	}

	if h.hostDir != nil && !h.hostExhausted {
		for {
			names, readErr := h.hostDir.Readdirnames(1)
			if readErr == io.EOF || (readErr == nil && len(names) == 0) {
				h.hostExhausted = true
				break
			}
			if readErr != nil {
				logger.Warnf("vfs: readdir %s: %v", h.virtualPath, readErr)
				h.hostExhausted = true
				break
			}
			name := names[0]
			if name == "." || name == ".." {
				continue
			}
			if h.seenNames != nil && h.seenNames[name] {
				continue
			}
			ent, ok := statDirEntry(int(h.hostDir.Fd()), name, h.flags)
			if !ok {
				continue
			}
			return ent, nil
		}
	}

	return DirEnt{EOF: true}, nil
}

// Stat resolves path and returns a DirEnt describing it, either
// synthesized for a virtual directory or sourced from the host.
func (v *VFS) Stat(ctx context.Context, path string) (DirEnt, error) {
	_, end := vfstrace.Start(ctx, "stat")
	var err error
	defer func() { end(err) }()

	canonical, res, mapped, rerr := v.resolve(path)
	if rerr != nil {
		err = rerr
		return DirEnt{}, err
	}

	if res.Inode != nil && mapped == "" {
		mode := os.FileMode(0o555)
		if !res.Flags.Has(flags.ReadOnly) {
			mode = 0o755
		}
		return DirEnt{Filename: basenameOf(canonical), IsFile: false, Mode: mode}, nil
	}

	var st unix.Stat_t
	if statErr := unix.Stat(mapped, &st); statErr != nil {
		err = translateErrno(statErr)
		return DirEnt{}, err
	}
	return statTToDirEnt(basenameOf(canonical), &st, res.Flags), nil
}

// Open resolves path, validates it names a regular file (tolerating
// ENOENT only in write/append mode), enforces READ_ONLY, and opens a
// FileHandle.
func (v *VFS) Open(ctx context.Context, path string, mode FileMode) (*FileHandle, error) {
	_, end := vfstrace.Start(ctx, "open")
	var err error
	defer func() { end(err) }()

	canonical, res, mapped, rerr := v.resolve(path)
	if rerr != nil {
		err = rerr
		return nil, err
	}

	var st unix.Stat_t
	statErr := unix.Stat(mapped, &st)
	if statErr != nil {
		if statErr != unix.ENOENT || mode == ModeRead {
			err = translateErrno(statErr)
			return nil, err
		}
	} else if st.Mode&unix.S_IFMT != unix.S_IFREG {
		err = NewError(NotAFile)
		return nil, err
	}

	if mode != ModeRead && res.Flags.Has(flags.ReadOnly) {
		err = NewError(PermissionDenied)
		return nil, err
	}

	f, openErr := os.OpenFile(mapped, mode.osFlag(), 0o644)
	if openErr != nil {
		err = translateOSErr(openErr)
		return nil, err
	}

	h := &FileHandle{id: uuid.New(), virtualPath: canonical, flags: res.Flags, host: f, mode: mode}
	v.handles[h.id] = h
	v.metric.IncrementOpenHandles()
	return h, nil
}

// Read delegates to the host file, treating the handle-type mismatch
// that should never occur in a correct caller as InternalError rather
// than panicking.
func (v *VFS) Read(ctx context.Context, h Handle, buf []byte) (int, error) {
	_, end := vfstrace.Start(ctx, "read")
	var err error
	defer func() { end(err) }()

	fh, ok := h.(*FileHandle)
	if !ok {
		err = NewErrorf(InternalError, "read: handle is not a FileHandle")
		logger.Errorf("vfs: read: handle is not a FileHandle")
		return 0, err
	}
	n, readErr := fh.host.Read(buf)
	if readErr != nil && readErr != io.EOF {
		err = NewErrorf(IOError, "read %s: %v", fh.virtualPath, readErr)
		return n, err
	}
	return n, nil
}

// Write delegates to the host file.
func (v *VFS) Write(ctx context.Context, h Handle, buf []byte) (int, error) {
	_, end := vfstrace.Start(ctx, "write")
	var err error
	defer func() { end(err) }()

	fh, ok := h.(*FileHandle)
	if !ok {
		err = NewErrorf(InternalError, "write: handle is not a FileHandle")
		logger.Errorf("vfs: write: handle is not a FileHandle")
		return 0, err
	}
	n, writeErr := fh.host.Write(buf)
	if writeErr != nil {
		err = NewErrorf(IOError, "write %s: %v", fh.virtualPath, writeErr)
		return n, err
	}
	return n, nil
}

// CloseHandle releases the host stream if any, decrements the quota, and
// is safe to call on an already-closed handle.
func (v *VFS) CloseHandle(ctx context.Context, h Handle) error {
	_, end := vfstrace.Start(ctx, "close_handle")
	var err error
	defer func() { end(err) }()

	if h == nil {
		return nil
	}
	if h.state() == stateClosed {
		return nil
	}

	switch hh := h.(type) {
	case *DirHandle:
		hh.st = stateClosed
		if hh.hostDir != nil {
			if closeErr := hh.hostDir.Close(); closeErr != nil {
				logger.Warnf("vfs: closing %s: %v", hh.virtualPath, closeErr)
			}
		}
	case *FileHandle:
		hh.st = stateClosed
		if closeErr := hh.host.Close(); closeErr != nil {
			logger.Warnf("vfs: closing %s: %v", hh.virtualPath, closeErr)
		}
	default:
		err = NewErrorf(InternalError, "close_handle: unrecognized handle type")
		return err
	}

	delete(v.handles, h.ID())
	v.metric.DecrementOpenHandles(1)
	return nil
}

// --- helpers ---

func basenameOf(p string) string {
	if p == "/" {
		return "/"
	}
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

func mapToHostPath(mountVirtualPath, target, canonical string) string {
	if mountVirtualPath == "/" {
		remainder := strings.TrimPrefix(canonical, "/")
		if remainder == "" {
			return target
		}
		return strings.TrimSuffix(target, "/") + "/" + remainder
	}
	remainder := canonical[len(mountVirtualPath):]
	return strings.TrimSuffix(target, "/") + remainder
}

func translateErrno(err error) error {
	switch err {
	case unix.EACCES:
		return NewError(PermissionDenied)
	case unix.ENOENT:
		return NewError(NoSuchFileOrDirectory)
	default:
		return NewErrorf(InternalError, "%v", err)
	}
}

func translateOSErr(err error) error {
	switch {
	case os.IsPermission(err):
		return NewError(PermissionDenied)
	case os.IsNotExist(err):
		return NewError(NoSuchFileOrDirectory)
	default:
		return NewErrorf(InternalError, "%v", err)
	}
}

func statDirEntry(dirfd int, name string, flagsVal flags.Flag) (DirEnt, bool) {
	var st unix.Stat_t
	if err := unix.Fstatat(dirfd, name, &st, 0); err != nil {
		// A stat failure on an individual entry is silently skipped —
		// likely a truncated name or a permission error on that entry.
		return DirEnt{}, false
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFREG, unix.S_IFDIR, unix.S_IFLNK:
	default:
		return DirEnt{}, false
	}
	return statTToDirEnt(name, &st, flagsVal), true
}

func statTToDirEnt(name string, st *unix.Stat_t, flagsVal flags.Flag) DirEnt {
	mode := os.FileMode(st.Mode & 0o777)
	if flagsVal.Has(flags.ReadOnly) {
		mode &^= 0o222
	}
	return DirEnt{
		Filename: name,
		IsFile:   st.Mode&unix.S_IFMT == unix.S_IFREG,
		UID:      st.Uid,
		GID:      st.Gid,
		Size:     st.Size,
		Mode:     mode,
		Atime:    time.Unix(st.Atim.Sec, st.Atim.Nsec),
		Mtime:    time.Unix(st.Mtim.Sec, st.Mtim.Nsec),
		Ctime:    time.Unix(st.Ctim.Sec, st.Ctim.Nsec),
	}
}
