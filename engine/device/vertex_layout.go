package device

import "fmt"

// ScalarType is the storage type of a single vertex attribute component.
type ScalarType int

const (
	ScalarFloat32 ScalarType = iota
	ScalarUint8
	ScalarInt16
	ScalarUint16
	ScalarFloat16
	// ScalarUint1010102 packs three unsigned 10-bit components and a 2-bit one into 32 bits.
	ScalarUint1010102
	// ScalarInt1010102 packs three signed 10-bit components and a 2-bit one into 32 bits.
	ScalarInt1010102
)

// DeclType is the data type of one vertex element.
type DeclType int

const (
	DeclFloat1 DeclType = iota
	DeclFloat2
	DeclFloat3
	DeclFloat4
	// DeclColor is a packed 32-bit color, bytes in B, G, R, A order, normalized to [0, 1].
	DeclColor
	DeclUByte4
	DeclShort2
	DeclShort4
	DeclUByte4N
	DeclShort2N
	DeclShort4N
	DeclUShort2N
	DeclUShort4N
	DeclUDec3
	DeclDec3N
	DeclFloat16x2
	DeclFloat16x4

	declTypeCount
)

type declTypeInfo struct {
	name       string
	components int
	size       int
	scalar     ScalarType
	normalized bool
}

var declTypes = [declTypeCount]declTypeInfo{
	DeclFloat1:    {"Float1", 1, 4, ScalarFloat32, false},
	DeclFloat2:    {"Float2", 2, 8, ScalarFloat32, false},
	DeclFloat3:    {"Float3", 3, 12, ScalarFloat32, false},
	DeclFloat4:    {"Float4", 4, 16, ScalarFloat32, false},
	DeclColor:     {"Color", 4, 4, ScalarUint8, true},
	DeclUByte4:    {"UByte4", 4, 4, ScalarUint8, false},
	DeclShort2:    {"Short2", 2, 4, ScalarInt16, false},
	DeclShort4:    {"Short4", 4, 8, ScalarInt16, false},
	DeclUByte4N:   {"UByte4N", 4, 4, ScalarUint8, true},
	DeclShort2N:   {"Short2N", 2, 4, ScalarInt16, true},
	DeclShort4N:   {"Short4N", 4, 8, ScalarInt16, true},
	DeclUShort2N:  {"UShort2N", 2, 4, ScalarUint16, true},
	DeclUShort4N:  {"UShort4N", 4, 8, ScalarUint16, true},
	DeclUDec3:     {"UDec3", 3, 4, ScalarUint1010102, false},
	DeclDec3N:     {"Dec3N", 3, 4, ScalarInt1010102, true},
	DeclFloat16x2: {"Float16x2", 2, 4, ScalarFloat16, false},
	DeclFloat16x4: {"Float16x4", 4, 8, ScalarFloat16, false},
}

// Valid reports whether t is a known declaration type.
func (t DeclType) Valid() bool {
	return t >= 0 && t < declTypeCount
}

// Components returns the number of components the shader sees for this type.
func (t DeclType) Components() int {
	if !t.Valid() {
		return 0
	}
	return declTypes[t].components
}

// Size returns the number of bytes the element occupies in a vertex.
func (t DeclType) Size() int {
	if !t.Valid() {
		return 0
	}
	return declTypes[t].size
}

// Scalar returns the storage type of one component.
func (t DeclType) Scalar() ScalarType {
	if !t.Valid() {
		return ScalarFloat32
	}
	return declTypes[t].scalar
}

// Normalized reports whether integer components are mapped to [0, 1] or [-1, 1].
func (t DeclType) Normalized() bool {
	if !t.Valid() {
		return false
	}
	return declTypes[t].normalized
}

func (t DeclType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("DeclType(%d)", int(t))
	}
	return declTypes[t].name
}

// DeclUsage is the semantic meaning of a vertex element.
type DeclUsage int

const (
	UsagePosition DeclUsage = iota
	UsageBlendWeight
	UsageBlendIndices
	UsageNormal
	UsagePSize
	UsageTexCoord
	UsageTangent
	UsageBinormal
	UsageTessFactor
	// UsagePositionT marks a position already in screen space (pixels, origin top-left).
	UsagePositionT
	UsageColor
	UsageFog
	UsageDepth
	UsageSample
)

var declUsageNames = [...]string{
	"Position", "BlendWeight", "BlendIndices", "Normal", "PSize", "TexCoord", "Tangent",
	"Binormal", "TessFactor", "PositionT", "Color", "Fog", "Depth", "Sample",
}

func (u DeclUsage) String() string {
	if u < 0 || int(u) >= len(declUsageNames) {
		return fmt.Sprintf("DeclUsage(%d)", int(u))
	}
	return declUsageNames[u]
}

// VertexElement describes one attribute inside an interleaved vertex.
type VertexElement struct {
	// Offset is the byte offset of the element inside the vertex.
	Offset int
	// Type is the data type of the element.
	Type DeclType
	// Usage is the semantic of the element.
	Usage DeclUsage
	// UsageIndex distinguishes multiple elements with the same usage, e.g. TexCoord 0 and 1.
	UsageIndex int
}

// LayoutStride returns the vertex stride implied by the elements: the sum of their sizes.
//
// Parameters:
//   - elements: the vertex elements
//
// Returns:
//   - int: the stride in bytes
func LayoutStride(elements []VertexElement) int {
	stride := 0
	for _, e := range elements {
		stride += e.Type.Size()
	}
	return stride
}

// HasUsage reports whether any element carries the given usage.
func HasUsage(elements []VertexElement, usage DeclUsage) bool {
	for _, e := range elements {
		if e.Usage == usage {
			return true
		}
	}
	return false
}

// validateElements checks that every element has a known type and usage and fits inside the
// stride derived from the element sizes.
func validateElements(elements []VertexElement) error {
	stride := LayoutStride(elements)
	for i, e := range elements {
		if !e.Type.Valid() {
			return fmt.Errorf("element %d has unknown type %d: %w", i, int(e.Type), ErrInvalidArgument)
		}
		if e.Usage < 0 || int(e.Usage) >= len(declUsageNames) {
			return fmt.Errorf("element %d has unknown usage %d: %w", i, int(e.Usage), ErrInvalidArgument)
		}
		if e.Offset < 0 || e.Offset+e.Type.Size() > stride {
			return fmt.Errorf("element %d at offset %d overruns stride %d: %w", i, e.Offset, stride, ErrInvalidArgument)
		}
		if e.UsageIndex < 0 {
			return fmt.Errorf("element %d has negative usage index: %w", i, ErrInvalidArgument)
		}
	}
	return nil
}
