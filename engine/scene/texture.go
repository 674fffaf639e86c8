package scene

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gfx/common"
	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
)

// TextureFlags describe which maps a texture was created from.
type TextureFlags uint32

const (
	// TextureDiffuse marks a texture holding a diffuse map.
	TextureDiffuse TextureFlags = 1 << 1
	// TextureOpacity marks a texture whose alpha channel comes from a separate opacity map.
	TextureOpacity TextureFlags = 1 << 2
)

// TextureParams selects the image files a texture is opened from.
type TextureParams struct {
	// Flags says which of the file names are valid.
	Flags TextureFlags
	// Diffuse is the color image.
	Diffuse string
	// Opacity is a grayscale image whose red channel replaces the diffuse alpha.
	Opacity string
	// MipLevels is passed to the device, 0 generates the full chain.
	MipLevels int
}

// TextureDevice is the part of device.Device textures need.
type TextureDevice interface {
	CreateTexture(format device.TextureFormat, width, height int, pixels []byte, mipLevels int) (device.ResourceHandle, error)
	DestroyResource(h *device.ResourceHandle) error
}

// decodeFile is the image loader used by Open.
var decodeFile = common.DecodeImageFile

// Texture is a device texture opened from image files.
type Texture struct {
	width  int
	height int
	flags  TextureFlags
	files  [2]string
	handle device.ResourceHandle
}

// NewTexture returns an empty texture. Driver.NewTexture is equivalent.
func NewTexture() *Texture {
	return &Texture{}
}

func (t *Texture) Width() int                    { return t.width }
func (t *Texture) Height() int                   { return t.height }
func (t *Texture) Flags() TextureFlags           { return t.flags }
func (t *Texture) Handle() device.ResourceHandle { return t.handle }

// FileName returns the diffuse (0) or opacity (1) file name, or "" for any other index.
func (t *Texture) FileName(i int) string {
	if i < 0 || i >= len(t.files) {
		return ""
	}
	return t.files[i]
}

// Open decodes the images named by params and creates the device texture. A texture that is
// already open is released first.
//
// Parameters:
//   - dev: the device that will own the texture
//   - params: the image files
//
// Returns:
//   - error: ErrInvalidArgument without a diffuse map, or the decode / device error
func (t *Texture) Open(dev TextureDevice, params TextureParams) error {
	if params.Flags&TextureDiffuse == 0 || params.Diffuse == "" {
		return fmt.Errorf("texture needs a diffuse map: %w", ErrInvalidArgument)
	}

	img, err := decodeFile(params.Diffuse)
	if err != nil {
		return err
	}
	if params.Flags&TextureOpacity != 0 && params.Opacity != "" {
		mask, err := decodeFile(params.Opacity)
		if err != nil {
			return err
		}
		if err := applyOpacity(img, mask); err != nil {
			return fmt.Errorf("opacity map %s: %w", params.Opacity, err)
		}
	}

	flags := params.Flags & (TextureDiffuse | TextureOpacity)
	if err := t.Upload(dev, img, params.MipLevels); err != nil {
		return fmt.Errorf("texture %s: %w", params.Diffuse, err)
	}
	t.flags = flags
	t.files = [2]string{params.Diffuse, ""}
	if flags&TextureOpacity != 0 {
		t.files[1] = params.Opacity
	}
	device.Logger().Debug("texture opened",
		slog.String("file", params.Diffuse),
		slog.Int("width", t.width),
		slog.Int("height", t.height),
	)
	return nil
}

// Upload creates the device texture from decoded or generated RGBA pixels, replacing any
// texture already held. The texture has no file names afterwards.
//
// Parameters:
//   - dev: the device that will own the texture
//   - img: RGBA pixels, 4 channels
//   - mipLevels: passed to the device, 0 generates the full chain
//
// Returns:
//   - error: ErrInvalidArgument for non RGBA data, or the device error
func (t *Texture) Upload(dev TextureDevice, img common.TextureStagingData, mipLevels int) error {
	if img.Channels != 4 {
		return fmt.Errorf("%d channel image: %w", img.Channels, ErrInvalidArgument)
	}
	h, err := dev.CreateTexture(device.FormatRGBA, img.Width, img.Height, img.Pixels, mipLevels)
	if err != nil {
		return err
	}
	if err := t.Release(dev); err != nil {
		device.Logger().Warn("failed to release replaced texture", slog.Any("error", err))
	}
	t.handle = h
	t.width, t.height = img.Width, img.Height
	t.flags = TextureDiffuse
	t.files = [2]string{}
	return nil
}

// Release destroys the device texture. Releasing a closed texture is a no-op.
func (t *Texture) Release(dev TextureDevice) error {
	if t.handle.IsNull() {
		return nil
	}
	return dev.DestroyResource(&t.handle)
}

// applyOpacity copies the red channel of mask into the alpha channel of img. Both are RGBA.
func applyOpacity(img, mask common.TextureStagingData) error {
	if img.Width != mask.Width || img.Height != mask.Height {
		return fmt.Errorf("size %dx%d does not match diffuse %dx%d: %w",
			mask.Width, mask.Height, img.Width, img.Height, ErrInvalidArgument)
	}
	for i := 0; i+3 < len(img.Pixels) && i < len(mask.Pixels); i += 4 {
		img.Pixels[i+3] = mask.Pixels[i]
	}
	return nil
}

// AnimatedTexture cycles through a sequence of textures at a fixed frame delay. Frames advance
// only when the texture is sampled.
type AnimatedTexture struct {
	textures []*Texture
	delay    uint32

	// acc is the time accumulated towards the next frame switch.
	acc      uint32
	lastTime uint32
	index    int

	clock func() uint32
}

// NewAnimatedTexture returns an empty animated texture. Handle uses clock as the render time, nil
// leaves only Sample usable.
func NewAnimatedTexture(clock func() uint32) *AnimatedTexture {
	return &AnimatedTexture{clock: clock}
}

// SetTextures replaces the frame sequence and restarts it at frame 0.
func (a *AnimatedTexture) SetTextures(textures []*Texture) {
	a.textures = textures
	a.index = 0
	a.acc = 0
}

func (a *AnimatedTexture) Textures() []*Texture { return a.textures }
func (a *AnimatedTexture) Delay() uint32        { return a.delay }
func (a *AnimatedTexture) Index() int           { return a.index }

// SetDelay sets the time each frame is shown, in milliseconds. 0 holds the current frame.
func (a *AnimatedTexture) SetDelay(ms uint32) {
	a.delay = ms
}

// FileName forwards to the first frame, or returns "" for an empty sequence.
func (a *AnimatedTexture) FileName(i int) string {
	if len(a.textures) == 0 {
		return ""
	}
	return a.textures[0].FileName(i)
}

// Sample advances the sequence to render time now and returns the current frame's handle.
// Sampling twice at the same time is idempotent.
//
// Parameters:
//   - now: the render time in milliseconds
//
// Returns:
//   - device.ResourceHandle: the frame's handle, or the null handle for an empty sequence
func (a *AnimatedTexture) Sample(now uint32) device.ResourceHandle {
	if len(a.textures) == 0 {
		return device.ResourceHandle{}
	}
	if now != a.lastTime {
		a.acc += now - a.lastTime
		a.lastTime = now
		if a.delay > 0 {
			steps := a.acc / a.delay
			a.acc %= a.delay
			a.index = int((uint32(a.index) + steps) % uint32(len(a.textures)))
		}
	}
	return a.textures[a.index].Handle()
}

// Handle samples the sequence at the clock's current render time.
func (a *AnimatedTexture) Handle() device.ResourceHandle {
	if a.clock == nil {
		return a.Sample(a.lastTime)
	}
	return a.Sample(a.clock())
}
