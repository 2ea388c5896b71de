// Package dmg wires the CPU, PPU, and MMU into a runnable Game Boy core and
// exposes it to a host over a pair of message channels.
package dmg

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nellousan/dmg-go/dmg/cpu"
	"github.com/nellousan/dmg-go/dmg/memory"
	"github.com/nellousan/dmg-go/dmg/video"
)

// debt tracks the remaining T-cycles an actor owes before it is due to run
// again; it decouples the CPU's and PPU's step granularities inside the
// shared per-T-cycle loop.
type debt struct {
	remaining int
}

// due reports whether the owner should step this iteration, charging one
// T-cycle against any outstanding debt.
func (d *debt) due() bool {
	if d.remaining > 0 {
		d.remaining--
		return false
	}
	return true
}

func (d *debt) waitFor(cycles int) {
	d.remaining = cycles - 1
}

// Machine is the emulation core: a CPU, a PPU, and the MMU that mediates
// every access between them, driven one T-cycle at a time by Run.
type Machine struct {
	cpu *cpu.CPU
	ppu *video.PPU
	mmu *memory.MMU

	inbound  <-chan HostMessage
	outbound chan<- CoreMessage

	stepMode     bool
	stepsPending int
}

// NewMachine constructs a Machine from a raw cartridge image, wiring the
// host's channel pair. bootROM may be nil to start execution directly at
// 0x0100 with documented post-boot register values.
func NewMachine(rom []byte, bootROM []byte, inbound <-chan HostMessage, outbound chan<- CoreMessage) (*Machine, error) {
	cart, err := memory.NewCartridge(rom)
	if err != nil {
		return nil, fmt.Errorf("dmg: loading cartridge: %w", err)
	}

	mmu := memory.New()
	mmu.LoadCartridge(cart)

	skipBoot := true
	if bootROM != nil {
		if err := mmu.LoadBootROM(bootROM); err != nil {
			return nil, fmt.Errorf("dmg: loading boot ROM: %w", err)
		}
		skipBoot = false
	}

	c := cpu.New(mmu)
	c.Reset(skipBoot)

	m := &Machine{
		cpu:      c,
		ppu:      video.New(mmu),
		mmu:      mmu,
		inbound:  inbound,
		outbound: outbound,
	}

	slog.Info("machine initialized", "title", cart.Info.Title, "cart_type", cart.Info.CartType, "boot_rom", bootROM != nil)

	return m, nil
}

// Run drives the core until a Close message arrives, pacing frames against
// limiter and exchanging state with the host between frames. It recovers
// from an illegal-opcode panic by logging it and returning cleanly, per the
// documented fatal-but-clean-shutdown policy.
func (m *Machine) Run(limiter Limiter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("core halted on fatal condition", "cause", r, "pc", fmt.Sprintf("0x%04X", m.cpu.PC()))
			m.sendState()
			err = fmt.Errorf("dmg: fatal: %v", r)
		}
	}()

	for {
		if !m.handleHostMessages() {
			return nil
		}

		limiter.WaitForNextFrame()

		if m.stepMode {
			m.runSteps()
			continue
		}

		m.runFrame()
	}
}

func (m *Machine) handleHostMessages() bool {
	for {
		select {
		case msg, ok := <-m.inbound:
			if !ok {
				return false
			}
			if !m.applyHostMessage(msg) {
				return false
			}
		default:
			return true
		}
	}
}

func (m *Machine) applyHostMessage(msg HostMessage) bool {
	switch v := msg.(type) {
	case CloseMessage:
		return false
	case StepModeMessage:
		m.stepMode = v.Enabled
	case StepMessage:
		if m.stepMode {
			m.stepsPending += v.Count
		}
	case RequestStateMessage:
		m.sendState()
	case ButtonPressedMessage:
		m.mmu.PressButton(v.Button)
	case ButtonReleasedMessage:
		m.mmu.ReleaseButton(v.Button)
	}
	return true
}

func (m *Machine) sendState() {
	m.send(RegistersMessage{Registers: m.cpu.Snapshot()})
	m.send(MemoryMessage{Memory: m.mmu.DumpMemory()})
}

// send forwards a core message, logging and dropping it on a full or nil
// channel rather than letting a slow or gone host corrupt core state.
func (m *Machine) send(msg CoreMessage) {
	select {
	case m.outbound <- msg:
	default:
		slog.Warn("dropped core message, host channel not ready", "type", fmt.Sprintf("%T", msg))
	}
}

// runSteps executes the pending Step-mode instruction count, ticking the PPU
// and timer in lockstep with whatever cycles each instruction consumed.
func (m *Machine) runSteps() {
	for m.stepsPending > 0 {
		m.stepsPending--
		cycles := m.cpu.Step()
		m.mmu.Tick(cycles)
		m.ppu.Tick(cycles)
		if m.ppu.ConsumeFrameReady() {
			m.send(FrameMessage{Frame: m.ppu.FrameBuffer()})
		}
	}
}

// runFrame advances the core by one full frame's worth of T-cycles using the
// cpu_debt/ppu_debt loop: each iteration represents one T-cycle, the timer
// ticks unconditionally, and the CPU/PPU step only when their debt reaches
// zero, then rearm their debt with the cost of whatever they just ran.
func (m *Machine) runFrame() {
	var cpuDebt, ppuDebt debt

	for i := 0; i < cyclesPerFrame; i++ {
		m.mmu.Tick(1)

		if cpuDebt.due() {
			cycles := m.cpu.Step()
			cpuDebt.waitFor(cycles)
		}

		if ppuDebt.due() {
			m.ppu.Tick(1)
			ppuDebt.waitFor(1)
			if m.ppu.ConsumeFrameReady() {
				m.send(FrameMessage{Frame: m.ppu.FrameBuffer()})
			}
		}
	}
}

// ReadBootROM loads a boot image from disk, wrapping any read error. Its
// length is not checked here; MMU.LoadBootROM rejects images that are not
// 256 bytes.
func ReadBootROM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dmg: reading boot ROM %s: %w", path, err)
	}
	return data, nil
}

// FrameBuffer exposes the PPU's current framebuffer for a host that drives
// the Machine directly (headless/benchmark use) instead of over channels.
func (m *Machine) FrameBuffer() *video.FrameBuffer {
	return m.ppu.FrameBuffer()
}

// CPU exposes the CPU for direct disassembler/debugger access.
func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

// MMU exposes the MMU for direct disassembler/debugger access.
func (m *Machine) MMU() *memory.MMU {
	return m.mmu
}
