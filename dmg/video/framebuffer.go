// Package video implements the DMG picture processing unit: its scanline
// state machine, background/window/sprite rendering, and the resulting
// framebuffer.
package video

const (
	// Width is the number of visible pixels per scanline.
	Width = 160
	// Height is the number of visible scanlines.
	Height = 144
	// pixelCount is the total number of pixels in one frame.
	pixelCount = Width * Height
)

// Shade is one of the four DMG grayscale values a palette can map a 2-bit
// color index to.
type Shade uint32

const (
	ShadeWhite     Shade = 0xFFFFFFFF
	ShadeLightGray Shade = 0x989898FF
	ShadeDarkGray  Shade = 0x4C4C4CFF
	ShadeBlack     Shade = 0x000000FF
)

var shadeTable = [4]Shade{ShadeWhite, ShadeLightGray, ShadeDarkGray, ShadeBlack}

// shadeFromIndex maps a raw 2-bit color index (0-3) to its display shade.
func shadeFromIndex(index uint8) Shade {
	return shadeTable[index&0x03]
}

// FrameBuffer holds one rendered frame as packed RGBA32 pixels, row-major,
// origin top-left.
type FrameBuffer struct {
	pixels [pixelCount]uint32
}

// NewFrameBuffer returns a FrameBuffer cleared to white, matching the blank
// screen real hardware shows before the PPU renders its first scanline.
func NewFrameBuffer() *FrameBuffer {
	f := &FrameBuffer{}
	f.Clear()
	return f
}

// Set writes a shade at (x, y).
func (f *FrameBuffer) Set(x, y int, shade Shade) {
	f.pixels[y*Width+x] = uint32(shade)
}

// At returns the packed RGBA32 value at (x, y).
func (f *FrameBuffer) At(x, y int) uint32 {
	return f.pixels[y*Width+x]
}

// Pixels returns the raw backing slice, row-major top-left origin.
func (f *FrameBuffer) Pixels() []uint32 {
	return f.pixels[:]
}

// Clear resets every pixel to white.
func (f *FrameBuffer) Clear() {
	for i := range f.pixels {
		f.pixels[i] = uint32(ShadeWhite)
	}
}
