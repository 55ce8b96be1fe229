package safetensors

// DType identifies the numeric element type of a tensor as encoded in a
// safetensors header (e.g. "F32", "BF16", "I8").
type DType string

const (
	DTypeF64    DType = "F64"
	DTypeF32    DType = "F32"
	DTypeF16    DType = "F16"
	DTypeBF16   DType = "BF16"
	DTypeF8E4M3 DType = "F8_E4M3"
	DTypeF8E5M2 DType = "F8_E5M2"
	DTypeI64    DType = "I64"
	DTypeI32    DType = "I32"
	DTypeI16    DType = "I16"
	DTypeI8     DType = "I8"
	DTypeU8     DType = "U8"
	DTypeBool   DType = "BOOL"
)

// defaultBytesPerElement is used for dtype codes not in the table below.
const defaultBytesPerElement = 4

var dtypeSizes = map[DType]int64{
	DTypeF64:    8,
	DTypeF32:    4,
	DTypeF16:    2,
	DTypeBF16:   2,
	DTypeF8E4M3: 1,
	DTypeF8E5M2: 1,
	DTypeI64:    8,
	DTypeI32:    4,
	DTypeI16:    2,
	DTypeI8:     1,
	DTypeU8:     1,
	DTypeBool:   1,
}

// BytesPerElement returns the storage width of a single element of the
// given dtype. Unrecognized codes are assumed to be 4 bytes wide.
func (d DType) BytesPerElement() int64 {
	if size, ok := dtypeSizes[d]; ok {
		return size
	}
	return defaultBytesPerElement
}
