// Command dmgo runs a DMG cartridge: interactively in a terminal window, or
// headless for a fixed number of frames with optional snapshot output.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"

	"github.com/nellousan/dmg-go/dmg"
	"github.com/nellousan/dmg-go/dmg/terminalui"
	"github.com/nellousan/dmg-go/dmg/video"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgo"
	app.Usage = "dmgo [options] <ROM file>"
	app.Description = "A Game Boy (DMG) emulator core with a terminal frontend"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "Path to the ROM file"},
		cli.StringFlag{Name: "boot", Usage: "Path to a 256-byte boot ROM image (default: synthesized stub)"},
		cli.BoolFlag{Name: "headless", Usage: "Run without a terminal interface"},
		cli.IntFlag{Name: "frames", Usage: "Number of frames to run in headless mode", Value: 0},
		cli.IntFlag{Name: "snapshot-interval", Usage: "Save framebuffer snapshots every N frames in headless mode (0 = disabled)", Value: 0},
		cli.StringFlag{Name: "snapshot-dir", Usage: "Directory to save frame snapshots (default: temp directory)"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgo: fatal", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("dmgo: no ROM path provided")
		}
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("dmgo: reading ROM %s: %w", romPath, err)
	}

	bootROM, err := loadBootROM(c.String("boot"))
	if err != nil {
		return err
	}

	if c.Bool("headless") {
		return runHeadless(rom, bootROM, c.Int("frames"), c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
	}
	return runInteractive(rom, bootROM)
}

func loadBootROM(path string) ([]byte, error) {
	if path == "" {
		slog.Info("no boot ROM given, synthesizing a startup stub")
		return dmg.DefaultBootROM(), nil
	}
	return dmg.ReadBootROM(path)
}

func runInteractive(rom, bootROM []byte) error {
	inbound := make(chan dmg.HostMessage, 16)
	outbound := make(chan dmg.CoreMessage, 16)

	machine, err := dmg.NewMachine(rom, bootROM, inbound, outbound)
	if err != nil {
		return err
	}

	renderer, err := terminalui.NewRenderer(outbound, inbound)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- machine.Run(dmg.NewAdaptiveLimiter())
	}()

	if err := renderer.Run(); err != nil {
		return err
	}

	return <-errCh
}

func runHeadless(rom, bootROM []byte, frames, snapshotInterval int, snapshotDir, romPath string) error {
	if frames <= 0 {
		return errors.New("dmgo: headless mode requires --frames with a positive value")
	}

	if snapshotInterval > 0 {
		if snapshotDir == "" {
			dir, err := os.MkdirTemp("", "dmgo-snapshots-*")
			if err != nil {
				return fmt.Errorf("dmgo: creating snapshot directory: %w", err)
			}
			snapshotDir = dir
		} else if err := os.MkdirAll(snapshotDir, 0755); err != nil {
			return fmt.Errorf("dmgo: creating snapshot directory: %w", err)
		}
	}

	inbound := make(chan dmg.HostMessage, 1)
	outbound := make(chan dmg.CoreMessage, 4)

	machine, err := dmg.NewMachine(rom, bootROM, inbound, outbound)
	if err != nil {
		return err
	}

	romName := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))

	errCh := make(chan error, 1)
	go func() { errCh <- machine.Run(dmg.NewNoOpLimiter()) }()

	for frame := 1; frame <= frames; frame++ {
		msg := <-outbound
		fb, ok := msg.(dmg.FrameMessage)
		if !ok {
			continue
		}

		if snapshotInterval > 0 && frame%snapshotInterval == 0 {
			path := filepath.Join(snapshotDir, fmt.Sprintf("%s_frame_%d.txt", romName, frame))
			if err := saveSnapshot(fb.Frame, path, frame); err != nil {
				slog.Error("dmgo: saving snapshot", "frame", frame, "error", err)
			} else {
				slog.Info("dmgo: saved snapshot", "frame", frame, "path", path)
			}
		}
		if frame%10 == 0 {
			slog.Info("dmgo: frame progress", "completed", frame, "total", frames)
		}
	}

	inbound <- dmg.CloseMessage{}
	err = <-errCh

	slog.Info("dmgo: headless run complete", "frames", frames)
	return err
}

func saveSnapshot(fb *video.FrameBuffer, path string, frame int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "# DMG frame snapshot (half-block rendering)\n")
	fmt.Fprintf(file, "# Frame: %d\n", frame)
	fmt.Fprintf(file, "# Resolution: %dx%d pixels\n#\n", video.Width, video.Height)

	for _, line := range terminalui.RenderHalfBlocks(fb) {
		fmt.Fprintln(file, line)
	}
	return nil
}
