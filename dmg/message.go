package dmg

import (
	"github.com/nellousan/dmg-go/dmg/cpu"
	"github.com/nellousan/dmg-go/dmg/memory"
	"github.com/nellousan/dmg-go/dmg/video"
)

// CoreMessage is sent from the Machine goroutine to a host (debugger UI,
// terminal frontend) over its outbound channel.
type CoreMessage interface {
	isCoreMessage()
}

// FrameMessage carries a completed frame's pixels.
type FrameMessage struct {
	Frame *video.FrameBuffer
}

// RegistersMessage carries a register-file snapshot, sent in response to a
// RequestState host message.
type RegistersMessage struct {
	Registers cpu.Snapshot
}

// MemoryMessage carries a full 64 KiB address space snapshot, sent alongside
// RegistersMessage in response to RequestState.
type MemoryMessage struct {
	Memory [0x10000]byte
}

func (FrameMessage) isCoreMessage()     {}
func (RegistersMessage) isCoreMessage() {}
func (MemoryMessage) isCoreMessage()    {}

// Button identifies one of the eight joypad inputs a host can drive.
type Button = memory.Button

const (
	ButtonRight  = memory.ButtonRight
	ButtonLeft   = memory.ButtonLeft
	ButtonUp     = memory.ButtonUp
	ButtonDown   = memory.ButtonDown
	ButtonA      = memory.ButtonA
	ButtonB      = memory.ButtonB
	ButtonSelect = memory.ButtonSelect
	ButtonStart  = memory.ButtonStart
)

// HostMessage is sent from a host into the Machine's inbound channel to
// drive input and control step/pause behavior.
type HostMessage interface {
	isHostMessage()
}

// ButtonPressedMessage reports a button going down.
type ButtonPressedMessage struct{ Button Button }

// ButtonReleasedMessage reports a button going up.
type ButtonReleasedMessage struct{ Button Button }

// StepMessage requests execution of Count CPU instructions while in step
// mode, then pausing again; ignored otherwise.
type StepMessage struct{ Count int }

// RequestStateMessage asks the Machine to emit a RegistersMessage and a
// MemoryMessage on its outbound channel.
type RequestStateMessage struct{}

// CloseMessage asks the Machine's run loop to return.
type CloseMessage struct{}

// StepModeMessage toggles step mode: while enabled, the Machine only
// executes an instruction at a time in response to StepMessage.
type StepModeMessage struct{ Enabled bool }

func (ButtonPressedMessage) isHostMessage()  {}
func (ButtonReleasedMessage) isHostMessage() {}
func (StepMessage) isHostMessage()           {}
func (RequestStateMessage) isHostMessage()   {}
func (CloseMessage) isHostMessage()          {}
func (StepModeMessage) isHostMessage()       {}
