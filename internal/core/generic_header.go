package core

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// TimestampLayout is the creation time format written by Calvin writers.
const TimestampLayout = "2006-01-02T15:04:05Z"

// GenericDataHeader is the file-level descriptor: type and identity, creation
// time, locale, parameters and the headers of the files it was derived from.
//
// Parents are held by value, so the provenance chain is a tree owned by the
// root header; copying a header with Clone never shares parent storage.
type GenericDataHeader struct {
	FileTypeID   string
	FileID       string
	CreationTime string
	Locale       string
	Params       ParameterList
	Parents      []GenericDataHeader
}

// NewFileIdentifier returns a fresh, sortable, ASCII file identifier.
func NewFileIdentifier() string {
	return ulid.Make().String()
}

// FillDefaults assigns a file identifier and creation time when they are empty.
// Parent headers are left untouched since they describe existing files.
func (h *GenericDataHeader) FillDefaults(now time.Time) {
	if h.FileID == "" {
		h.FileID = NewFileIdentifier()
	}
	if h.CreationTime == "" {
		h.CreationTime = now.UTC().Format(TimestampLayout)
	}
}

// AddParent appends a copy of p to the provenance list.
func (h *GenericDataHeader) AddParent(p GenericDataHeader) {
	h.Parents = append(h.Parents, p.Clone())
}

// Clone returns a deep copy.
func (h GenericDataHeader) Clone() GenericDataHeader {
	out := h
	out.Params = h.Params.Clone()
	if h.Parents != nil {
		out.Parents = make([]GenericDataHeader, len(h.Parents))
		for i, p := range h.Parents {
			out.Parents[i] = p.Clone()
		}
	}
	return out
}

// Walk visits h and every ancestor depth-first, parents in stored order.
// path holds the parent indices leading from h to the visited header; the
// root has an empty path. Returning false from fn stops the walk.
func (h *GenericDataHeader) Walk(fn func(path []int, hdr *GenericDataHeader) bool) {
	h.walk([]int{}, fn)
}

func (h *GenericDataHeader) walk(path []int, fn func([]int, *GenericDataHeader) bool) bool {
	if !fn(path, h) {
		return false
	}
	for i := range h.Parents {
		if !h.Parents[i].walk(append(path[:len(path):len(path)], i), fn) {
			return false
		}
	}
	return true
}

// FindParent returns the nearest ancestor (breadth-first) whose file type
// identifier equals fileTypeID. h itself is not considered.
func (h *GenericDataHeader) FindParent(fileTypeID string) (*GenericDataHeader, bool) {
	queue := make([]*GenericDataHeader, 0, len(h.Parents))
	for i := range h.Parents {
		queue = append(queue, &h.Parents[i])
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.FileTypeID == fileTypeID {
			return cur, true
		}
		for i := range cur.Parents {
			queue = append(queue, &cur.Parents[i])
		}
	}
	return nil, false
}

// Depth returns the length of the longest provenance chain above h.
func (h *GenericDataHeader) Depth() int {
	d := 0
	for i := range h.Parents {
		d = max(d, 1+h.Parents[i].Depth())
	}
	return d
}

// EncodedSize returns the serialized size of h including all parents.
func (h GenericDataHeader) EncodedSize() int {
	n := String8Size(h.FileTypeID) + String8Size(h.FileID) +
		String16Size(h.CreationTime) + String16Size(h.Locale) +
		h.Params.EncodedSize() + 4
	for _, p := range h.Parents {
		n += p.EncodedSize()
	}
	return n
}

// Encode appends h and its parents depth-first.
func (h GenericDataHeader) Encode(e *Encoder) {
	e.PutString8(h.FileTypeID)
	e.PutString8(h.FileID)
	e.PutString16(h.CreationTime)
	e.PutString16(h.Locale)
	h.Params.Encode(e)
	//nolint:gosec // G115: parent counts are bounded by MaxListCount
	e.PutUint32(uint32(len(h.Parents)))
	for _, p := range h.Parents {
		p.Encode(e)
	}
}

// maxParentDepth bounds recursion when decoding corrupt provenance chains.
const maxParentDepth = 64

// DecodeGenericDataHeader reads a header and its parents.
func DecodeGenericDataHeader(d *Decoder) (GenericDataHeader, error) {
	return decodeGenericDataHeader(d, 0)
}

func decodeGenericDataHeader(d *Decoder, depth int) (GenericDataHeader, error) {
	var h GenericDataHeader
	if depth > maxParentDepth {
		return h, errTooDeep(d.Offset())
	}
	var err error
	if h.FileTypeID, err = d.String8(); err != nil {
		return h, err
	}
	if h.FileID, err = d.String8(); err != nil {
		return h, err
	}
	if h.CreationTime, err = d.String16(); err != nil {
		return h, err
	}
	if h.Locale, err = d.String16(); err != nil {
		return h, err
	}
	if h.Params, err = DecodeParameterList(d); err != nil {
		return h, err
	}
	n, err := d.Count("parent header")
	if err != nil {
		return h, err
	}
	for range n {
		p, err := decodeGenericDataHeader(d, depth+1)
		if err != nil {
			return h, err
		}
		h.Parents = append(h.Parents, p)
	}
	return h, nil
}
