package calvin

import "github.com/scigolib/calvin/internal/core"

// Structures of the container, shared with the format adapters.
type (
	FileHeader        = core.FileHeader
	GenericDataHeader = core.GenericDataHeader
	DataGroupHeader   = core.DataGroupHeader
	DataSetHeader     = core.DataSetHeader
	ColumnInfo        = core.ColumnInfo
	ColumnType        = core.ColumnType
	ParameterList     = core.ParameterList
	ParameterValue    = core.ParameterValue
	ParameterType     = core.ParameterType
	NameValue         = core.NameValue
	RowEncoder        = core.RowEncoder
	RowDecoder        = core.RowDecoder
	RowSource         = core.RowSource
)

// Column types.
const (
	ColumnByte    = core.ColumnByte
	ColumnUByte   = core.ColumnUByte
	ColumnShort   = core.ColumnShort
	ColumnUShort  = core.ColumnUShort
	ColumnInt     = core.ColumnInt
	ColumnUInt    = core.ColumnUInt
	ColumnFloat   = core.ColumnFloat
	ColumnASCII   = core.ColumnASCII
	ColumnUnicode = core.ColumnUnicode
)

// Parameter value types.
const (
	ParamInt8   = core.ParamInt8
	ParamUInt8  = core.ParamUInt8
	ParamInt16  = core.ParamInt16
	ParamUInt16 = core.ParamUInt16
	ParamInt32  = core.ParamInt32
	ParamUInt32 = core.ParamUInt32
	ParamFloat  = core.ParamFloat
	ParamAscii  = core.ParamAscii
	ParamText   = core.ParamText
	ParamRaw    = core.ParamRaw
)

// TimestampLayout is the creation time format.
const TimestampLayout = core.TimestampLayout

// Constructors re-exported from the core structures.
var (
	NewFileHeader    = core.NewFileHeader
	NewParameterList = core.NewParameterList
	NewRowEncoder    = core.NewRowEncoder
	NewRowDecoder    = core.NewRowDecoder
	ParseValue       = core.ParseValue

	ByteColumn    = core.ByteColumn
	UByteColumn   = core.UByteColumn
	ShortColumn   = core.ShortColumn
	UShortColumn  = core.UShortColumn
	IntColumn     = core.IntColumn
	UIntColumn    = core.UIntColumn
	FloatColumn   = core.FloatColumn
	ASCIIColumn   = core.ASCIIColumn
	UnicodeColumn = core.UnicodeColumn

	Int8Value   = core.Int8Value
	UInt8Value  = core.UInt8Value
	Int16Value  = core.Int16Value
	UInt16Value = core.UInt16Value
	Int32Value  = core.Int32Value
	UInt32Value = core.UInt32Value
	FloatValue  = core.FloatValue
	AsciiValue  = core.AsciiValue
	TextValue   = core.TextValue
	RawValue    = core.RawValue
)
