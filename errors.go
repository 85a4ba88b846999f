package calvin

import (
	"errors"

	"github.com/scigolib/calvin/internal/utils"
)

// Errors returned by this package and the format adapters. Test for them
// with errors.Is.
var (
	ErrFileFormat         = utils.ErrFileFormat
	ErrInvalidVersion     = utils.ErrInvalidVersion
	ErrTypeMismatch       = utils.ErrTypeMismatch
	ErrIndexOutOfRange    = utils.ErrIndexOutOfRange
	ErrKindNotFound       = utils.ErrKindNotFound
	ErrNotInitialized     = utils.ErrNotInitialized
	ErrAlreadyInitialized = utils.ErrAlreadyInitialized
	ErrClosed             = utils.ErrClosed
	ErrBatchAborted       = utils.ErrBatchAborted
)

// ErrReadOnly is returned by writes to a data set of a file opened with Open.
var ErrReadOnly = errors.New("calvin: data set is read-only")
