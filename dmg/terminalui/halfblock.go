package terminalui

import "github.com/nellousan/dmg-go/dmg/video"

// halfBlockChar picks a Unicode half-block glyph for a vertically adjacent
// pair of shades, letting a plain text dump pack two pixel rows per line.
func halfBlockChar(top, bottom int) rune {
	switch {
	case top == bottom:
		return '█'
	case top == 3 && bottom != 3:
		return '▄'
	default:
		return '▀'
	}
}

// RenderHalfBlocks renders fb as one string per two scanlines, for headless
// snapshot output.
func RenderHalfBlocks(fb *video.FrameBuffer) []string {
	textHeight := (video.Height + 1) / 2
	lines := make([]string, textHeight)

	for row := 0; row < textHeight; row++ {
		line := make([]rune, video.Width)
		topRow := row * 2
		bottomRow := topRow + 1

		for x := 0; x < video.Width; x++ {
			topShade := shadeIndex(fb.At(x, topRow))
			bottomShade := 3
			if bottomRow < video.Height {
				bottomShade = shadeIndex(fb.At(x, bottomRow))
			}
			line[x] = halfBlockChar(topShade, bottomShade)
		}
		lines[row] = string(line)
	}

	return lines
}
