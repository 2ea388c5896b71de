package memory

import "github.com/nellousan/dmg-go/dmg/bit"

// Button identifies one of the eight DMG joypad inputs.
type Button uint8

const (
	ButtonRight Button = iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// Joypad models the P1 register: two 4-bit nibbles (direction keys, action
// keys) selected by writing to bits 4/5, with a 0 bit meaning "pressed".
type Joypad struct {
	buttons uint8 // A/B/Select/Start, active low
	dpad    uint8 // Right/Left/Up/Down, active low
	selectLine uint8
}

// NewJoypad returns a Joypad with nothing pressed.
func NewJoypad() *Joypad {
	return &Joypad{buttons: 0x0F, dpad: 0x0F}
}

// Read returns the current P1 value for whichever nibble is selected.
func (j *Joypad) Read() uint8 {
	switch j.selectLine {
	case 0x10:
		return j.dpad
	case 0x20:
		return j.buttons
	default:
		return 0x0F
	}
}

// Write stores the nibble-select bits (bits 4-5) written to P1.
func (j *Joypad) Write(value uint8) {
	j.selectLine = value & 0x30
}

// Press clears the bit for key, marking it pressed.
func (j *Joypad) Press(key Button) {
	j.set(key, false)
}

// Release sets the bit for key, marking it released.
func (j *Joypad) Release(key Button) {
	j.set(key, true)
}

func (j *Joypad) set(key Button, up bool) {
	switch key {
	case ButtonRight:
		j.dpad = bit.SetTo(0, j.dpad, up)
	case ButtonLeft:
		j.dpad = bit.SetTo(1, j.dpad, up)
	case ButtonUp:
		j.dpad = bit.SetTo(2, j.dpad, up)
	case ButtonDown:
		j.dpad = bit.SetTo(3, j.dpad, up)
	case ButtonA:
		j.buttons = bit.SetTo(0, j.buttons, up)
	case ButtonB:
		j.buttons = bit.SetTo(1, j.buttons, up)
	case ButtonSelect:
		j.buttons = bit.SetTo(2, j.buttons, up)
	case ButtonStart:
		j.buttons = bit.SetTo(3, j.buttons, up)
	}
}
