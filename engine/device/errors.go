package device

import "errors"

var (
	// ErrNullHandle is returned when an operation receives the null handle or a handle whose
	// resource was already destroyed.
	ErrNullHandle = errors.New("null resource handle")

	// ErrKindMismatch is returned when a handle of the wrong ResourceKind is passed to a
	// kind-specific operation.
	ErrKindMismatch = errors.New("resource kind mismatch")

	// ErrUnregisteredState is returned when a generic state id has no native mapping on the
	// active backend.
	ErrUnregisteredState = errors.New("state not registered on backend")

	// ErrInvalidArgument is returned for precondition violations such as zero-sized buffers or
	// mismatched data lengths.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSceneState is returned when BeginScene/EndScene are nested or unbalanced, or when a
	// draw is issued outside a scene.
	ErrSceneState = errors.New("invalid scene state")

	// ErrNotInitialized is returned when the device is used after Destroy.
	ErrNotInitialized = errors.New("device not initialized")

	// ErrUnsupported is returned when the backend cannot perform an optional operation.
	ErrUnsupported = errors.New("operation not supported by backend")
)
