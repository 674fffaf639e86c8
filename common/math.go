package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// clipDepthCorrection remaps clip-space z from the GL range [-1, 1] to the [0, 1] range
// expected by WebGPU: z' = 0.5*z + 0.5*w.
var clipDepthCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// ZeroToOneDepth converts a GL-convention projection matrix (clip z in [-1, 1]) into one that
// produces clip z in [0, 1], the convention used by WebGPU.
//
// Parameters:
//   - proj: the GL-style projection matrix
//
// Returns:
//   - mgl32.Mat4: the corrected projection matrix
func ZeroToOneDepth(proj mgl32.Mat4) mgl32.Mat4 {
	return clipDepthCorrection.Mul4(proj)
}

// ScreenSpaceProjection builds the orthographic projection used for pre-transformed vertices:
// x and y are window pixels with the origin in the top-left corner, z passes through in [0, 1].
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//
// Returns:
//   - mgl32.Mat4: the screen-space projection matrix
func ScreenSpaceProjection(width, height int) mgl32.Mat4 {
	w := float32(max(width, 1))
	h := float32(max(height, 1))
	return mgl32.Ortho(0, w, h, 0, 0, -1)
}
