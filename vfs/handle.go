package vfs

import (
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/oldphoenix/umsftpd/internal/inode"
	"github.com/oldphoenix/umsftpd/vfs/flags"
)

// FileMode selects the host open mode for a FileHandle.
type FileMode int

const (
	ModeRead FileMode = iota
	ModeWrite
	ModeAppend
)

func (m FileMode) osFlag() int {
	switch m {
	case ModeWrite:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case ModeAppend:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return os.O_RDONLY
	}
}

// handleState tracks a Handle through its Open -> Closed lifecycle; a
// handle is already Open when OpenDir/Open return it, so there is no
// separate Created state. Every operation but CloseHandle requires Open.
type handleState int

const (
	stateOpen handleState = iota
	stateClosed
)

// Handle is the tagged-union base every open directory or file handle
// implements. Kind lets Operations pattern-match the concrete variant and
// return InternalError on a mismatch rather than panic, per the source's
// defensive discipline around its handle union.
type Handle interface {
	ID() uuid.UUID
	Kind() HandleKind
	VirtualPath() string
	Flags() flags.Flag
	state() handleState
}

// HandleKind discriminates the two Handle variants.
type HandleKind int

const (
	KindDir HandleKind = iota
	KindFile
)

// DirHandle is an open directory: a merge of an inode's virtual_children
// and an optional host directory stream, read in that order by the
// readdir cursor.
type DirHandle struct {
	id          uuid.UUID
	virtualPath string
	flags       flags.Flag
	st          handleState

	// hostDir is nil when the directory has no host backing (a pure
	// virtual directory).
	hostDir *os.File
	// inode is the terminal inode at this path, used to source
	// virtual_children for the overlay; nil if the path resolved purely
	// into a mounted subtree with no matching inode.
	inode *inode.Inode

	// virtualChildIndex is the readdir cursor's position within
	// inode.VirtualChildren(); once it reaches the end the cursor moves
	// to draining hostDir.
	virtualChildIndex int
	// hostExhausted becomes true once the host stream has yielded EOF.
	hostExhausted bool
	// seenNames accumulates virtual child names already emitted, so the
	// host-stream phase can skip identically named entries (the
	// overlay's shadowing rule).
	seenNames map[string]bool
}

func (h *DirHandle) ID() uuid.UUID          { return h.id }
func (h *DirHandle) Kind() HandleKind       { return KindDir }
func (h *DirHandle) VirtualPath() string    { return h.virtualPath }
func (h *DirHandle) Flags() flags.Flag      { return h.flags }
func (h *DirHandle) state() handleState     { return h.st }

// FileHandle is an open file: a host *os.File plus the effective flags
// and mode it was opened under.
type FileHandle struct {
	id          uuid.UUID
	virtualPath string
	flags       flags.Flag
	st          handleState

	host *os.File
	mode FileMode
}

func (h *FileHandle) ID() uuid.UUID       { return h.id }
func (h *FileHandle) Kind() HandleKind    { return KindFile }
func (h *FileHandle) VirtualPath() string { return h.virtualPath }
func (h *FileHandle) Flags() flags.Flag   { return h.flags }
func (h *FileHandle) state() handleState  { return h.st }

// DirEnt is a single merged or synthesized directory entry, as returned
// by ReadDir and Stat.
type DirEnt struct {
	Filename string
	EOF      bool
	IsFile   bool
	UID      uint32
	GID      uint32
	Size     int64
	// Mode holds the 9-bit permission bits only (no type bits), with
	// write bits stripped under READ_ONLY.
	Mode  os.FileMode
	Atime time.Time
	Mtime time.Time
	Ctime time.Time
}
