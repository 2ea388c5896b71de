package terminalui

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/nellousan/dmg-go/dmg"
	"github.com/nellousan/dmg-go/dmg/cpu"
	"github.com/nellousan/dmg-go/dmg/disasm"
	"github.com/nellousan/dmg-go/dmg/video"
)

const (
	gameAreaWidth  = video.Width
	gameAreaHeight = video.Height
	registerHeight = 7
	disasmHeight   = 9
	minTermWidth   = 100
	minTermHeight  = 35

	// stateRefreshFrames controls how often RequestStateMessage is sent to
	// the core: every Nth rendered frame, to keep the 64 KiB memory dump
	// off the hot path.
	stateRefreshFrames = 6
)

var shadeChars = []rune{'█', '▓', '▒', '░'}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// memoryReader adapts a flat byte array snapshot to the disasm package's
// reader interface.
type memoryReader struct {
	bytes [0x10000]byte
}

func (r memoryReader) Read8(address uint16) uint8 { return r.bytes[address] }

// Renderer draws a Machine's channel output to a tcell terminal screen and
// forwards keyboard input back as HostMessages.
type Renderer struct {
	screen tcell.Screen

	inbound  <-chan dmg.CoreMessage
	outbound chan<- dmg.HostMessage

	running bool
	paused  bool

	logBuffer *LogBuffer

	frame     *video.FrameBuffer
	registers cpu.Snapshot
	memory    memoryReader
	haveState bool
	frameNum  int
}

// NewRenderer constructs a Renderer. inbound delivers CoreMessages from a
// running Machine; outbound carries HostMessages back (button presses,
// step/pause control, Close on quit).
func NewRenderer(inbound <-chan dmg.CoreMessage, outbound chan<- dmg.HostMessage) (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminalui: initializing terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminalui: initializing terminal: %w", err)
	}

	logBuffer := NewLogBuffer(100)
	slog.SetDefault(slog.New(NewLogBufferHandler(logBuffer, slog.LevelDebug)))

	return &Renderer{
		screen:    screen,
		inbound:   inbound,
		outbound:  outbound,
		running:   true,
		logBuffer: logBuffer,
		frame:     video.NewFrameBuffer(),
	}, nil
}

// Run drives the render loop until the user quits or the core closes its
// outbound channel. It owns the terminal for its duration.
func (r *Renderer) Run() error {
	defer r.screen.Fini()

	r.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	r.screen.Clear()

	events := make(chan tcell.Event, 16)
	go func() {
		for r.running {
			events <- r.screen.PollEvent()
		}
	}()

	r.send(dmg.RequestStateMessage{})

	for r.running {
		select {
		case msg, ok := <-r.inbound:
			if !ok {
				r.running = false
				break
			}
			r.applyCoreMessage(msg)
		case ev := <-events:
			r.handleEvent(ev)
		}
	}

	return nil
}

func (r *Renderer) send(msg dmg.HostMessage) {
	select {
	case r.outbound <- msg:
	default:
		slog.Warn("terminalui: dropped host message, core channel not ready")
	}
}

func (r *Renderer) applyCoreMessage(msg dmg.CoreMessage) {
	switch v := msg.(type) {
	case dmg.FrameMessage:
		r.frame = v.Frame
		r.frameNum++
		if r.frameNum%stateRefreshFrames == 0 {
			r.send(dmg.RequestStateMessage{})
		}
		r.render()
		r.screen.Show()
	case dmg.RegistersMessage:
		r.registers = v.Registers
		r.haveState = true
	case dmg.MemoryMessage:
		r.memory = memoryReader{bytes: v.Memory}
	}
}

func (r *Renderer) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			r.send(dmg.CloseMessage{})
			r.running = false
		case tcell.KeyEnter:
			r.send(dmg.ButtonPressedMessage{Button: dmg.ButtonStart})
		case tcell.KeyRight:
			r.send(dmg.ButtonPressedMessage{Button: dmg.ButtonRight})
		case tcell.KeyLeft:
			r.send(dmg.ButtonPressedMessage{Button: dmg.ButtonLeft})
		case tcell.KeyUp:
			r.send(dmg.ButtonPressedMessage{Button: dmg.ButtonUp})
		case tcell.KeyDown:
			r.send(dmg.ButtonPressedMessage{Button: dmg.ButtonDown})
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'a':
				r.send(dmg.ButtonPressedMessage{Button: dmg.ButtonA})
			case 's':
				r.send(dmg.ButtonPressedMessage{Button: dmg.ButtonB})
			case 'q':
				r.send(dmg.ButtonPressedMessage{Button: dmg.ButtonSelect})
			case ' ':
				r.paused = !r.paused
				r.send(dmg.StepModeMessage{Enabled: r.paused})
			case 'n':
				r.send(dmg.StepMessage{Count: 1})
			}
		}
	case *tcell.EventResize:
		r.screen.Sync()
	}
}

func (r *Renderer) render() {
	termWidth, termHeight := r.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		r.screen.Clear()
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		for i, ch := range msg {
			r.screen.SetContent(i, termHeight/2, ch, nil, style)
		}
		return
	}

	r.screen.Clear()
	r.drawBorders(termWidth, termHeight)
	r.drawGameBoy()
	r.drawRegisters(termWidth, termHeight)
	r.drawDisassembly(termWidth, termHeight)
	r.drawLogs(termWidth, termHeight)
}

func (r *Renderer) drawBorders(termWidth, termHeight int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	borderX := min(gameAreaWidth+1, termWidth/2)
	if borderX >= termWidth-10 {
		borderX = termWidth - 10
	}

	for y := 0; y < termHeight; y++ {
		if borderX < termWidth {
			r.screen.SetContent(borderX, y, '│', nil, borderStyle)
		}
	}

	registerEndY := registerHeight + 1
	if registerEndY < termHeight {
		for x := borderX + 1; x < termWidth; x++ {
			r.screen.SetContent(x, registerEndY, '─', nil, borderStyle)
		}
		r.screen.SetContent(borderX, registerEndY, '├', nil, borderStyle)
	}

	disasmEndY := registerEndY + disasmHeight + 1
	if disasmEndY < termHeight {
		for x := borderX + 1; x < termWidth; x++ {
			r.screen.SetContent(x, disasmEndY, '─', nil, borderStyle)
		}
		r.screen.SetContent(borderX, disasmEndY, '├', nil, borderStyle)
	}

	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	for i, ch := range " Game Boy " {
		r.screen.SetContent(1+i, 0, ch, nil, titleStyle)
	}
	for i, ch := range " CPU Registers " {
		r.screen.SetContent(borderX+2+i, 0, ch, nil, titleStyle)
	}
	if registerEndY+1 < termHeight {
		for i, ch := range " Disassembly " {
			r.screen.SetContent(borderX+2+i, registerEndY+1, ch, nil, titleStyle)
		}
	}
	if disasmEndY+1 < termHeight {
		for i, ch := range " Logs " {
			r.screen.SetContent(borderX+2+i, disasmEndY+1, ch, nil, titleStyle)
		}
	}

	if termHeight > 10 {
		helpStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		help := "arrows=dpad a/s=A/B q=Select Enter=Start SPACE=pause n=step Esc=quit"
		maxWidth := min(len(help), termWidth-2)
		for i, ch := range help[:maxWidth] {
			r.screen.SetContent(1+i, termHeight-1, ch, nil, helpStyle)
		}
	}
}

func (r *Renderer) drawGameBoy() {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for y := 0; y < gameAreaHeight; y++ {
		for x := 0; x < gameAreaWidth; x++ {
			shade := shadeIndex(r.frame.At(x, y))
			r.screen.SetContent(x, y+1, shadeChars[shade], nil, style)
		}
	}
}

func shadeIndex(pixel uint32) int {
	switch video.Shade(pixel) {
	case video.ShadeBlack:
		return 0
	case video.ShadeDarkGray:
		return 1
	case video.ShadeLightGray:
		return 2
	default:
		return 3
	}
}

func (r *Renderer) drawRegisters(termWidth, termHeight int) {
	startX := gameAreaWidth + 3
	startY := 1
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)

	status := "RUNNING"
	statusStyle := style
	if r.paused {
		status = "PAUSED"
		statusStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	}

	reg := r.registers
	lines := []string{
		fmt.Sprintf("Status: %s", status),
		fmt.Sprintf("A: 0x%02X  F: 0x%02X [%s]", reg.A, reg.F, flagString(reg.F)),
		fmt.Sprintf("B: 0x%02X  C: 0x%02X", reg.B, reg.C),
		fmt.Sprintf("D: 0x%02X  E: 0x%02X", reg.D, reg.E),
		fmt.Sprintf("H: 0x%02X  L: 0x%02X", reg.H, reg.L),
		fmt.Sprintf("SP: 0x%04X  PC: 0x%04X", reg.SP, reg.PC),
		fmt.Sprintf("IME: %v  Halted: %v", reg.IME, reg.Halted),
	}

	for i, line := range lines {
		if startY+i >= termHeight {
			break
		}
		s := style
		if i == 0 {
			s = statusStyle
		}
		x := startX
		for _, ch := range line {
			if x >= termWidth {
				break
			}
			r.screen.SetContent(x, startY+i, ch, nil, s)
			x++
		}
	}
}

func flagString(f uint8) string {
	flags := [4]struct {
		bit  uint8
		name string
	}{{7, "Z"}, {6, "N"}, {5, "H"}, {4, "C"}}
	out := ""
	for _, fl := range flags {
		if f&(1<<fl.bit) != 0 {
			out += fl.name
		} else {
			out += "-"
		}
	}
	return out
}

func (r *Renderer) drawDisassembly(termWidth, termHeight int) {
	if !r.haveState {
		return
	}

	startX := gameAreaWidth + 3
	startY := registerHeight + 3
	pc := r.registers.PC

	lines := disasm.Range(pc, disasmHeight, r.memory)

	disasmStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlue)

	for i, line := range lines {
		if startY+i >= termHeight {
			break
		}
		isCurrent := line.Address == pc
		text := disasm.Format(line, isCurrent)
		style := disasmStyle
		if isCurrent {
			style = currentStyle
		}

		x := startX
		maxWidth := termWidth - startX - 1
		if len(text) > maxWidth && maxWidth > 3 {
			text = text[:maxWidth-3] + "..."
		}
		for _, ch := range text {
			if x >= termWidth {
				break
			}
			r.screen.SetContent(x, startY+i, ch, nil, style)
			x++
		}
	}
}

func (r *Renderer) drawLogs(termWidth, termHeight int) {
	startX := gameAreaWidth + 3
	startY := registerHeight + 3 + disasmHeight + 1
	available := termHeight - startY
	if available <= 0 {
		return
	}

	logStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed)

	for i, entry := range r.logBuffer.Recent(available) {
		style := logStyle
		switch entry.Level {
		case slog.LevelWarn:
			style = warnStyle
		case slog.LevelError:
			style = errStyle
		}

		text := FormatLogEntry(entry)
		x := startX
		maxWidth := termWidth - startX - 1
		if len(text) > maxWidth && maxWidth > 3 {
			text = text[:maxWidth-3] + "..."
		}
		for _, ch := range text {
			if x >= termWidth {
				break
			}
			r.screen.SetContent(x, startY+i, ch, nil, style)
			x++
		}
	}
}
