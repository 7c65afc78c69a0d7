package vfs

import "github.com/oldphoenix/umsftpd/vfs/errs"

// Re-exported so callers working against package vfs never need to know
// the error taxonomy actually lives in vfs/errs (split out purely to
// avoid an import cycle with internal/lookup and internal/inode).
type (
	ErrorCode = errs.ErrorCode
	Error     = errs.Error
)

const (
	OK                    = errs.OK
	OutOfHandles          = errs.OutOfHandles
	PermissionDenied      = errs.PermissionDenied
	NoSuchFileOrDirectory = errs.NoSuchFileOrDirectory
	NotADirectory         = errs.NotADirectory
	NotAFile              = errs.NotAFile
	InternalError         = errs.InternalError
	IOError               = errs.IOError
)

var (
	NewError  = errs.NewError
	NewErrorf = errs.NewErrorf
	CodeOf    = errs.CodeOf
)
