package tui

import (
	"strconv"
	"strings"

	"github.com/1broseidon/tilewm/internal/compositor"
	"github.com/1broseidon/tilewm/internal/tiling"
)

// renderMinimap draws the mapped windows on output scaled to a width x height
// character canvas. Windows are drawn bottom of the stack first so raised
// windows cover the ones below. The selected window gets a heavy border.
func renderMinimap(output tiling.Rect, windows []compositor.WindowInfo, selected uint32, width, height int) []string {
	if width < 5 || height < 3 || output.Width <= 0 || output.Height <= 0 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, w := range windows {
		if !w.Mapped {
			continue
		}
		r := tiling.Rect{
			X:      w.Bounds.X - output.X,
			Y:      w.Bounds.Y - output.Y,
			Width:  w.Bounds.Width,
			Height: w.Bounds.Height,
		}
		drawTile(canvas, r, i+1, w.ID == selected, output.Width, output.Height, width, height)
	}
	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

func drawTile(canvas [][]rune, rect tiling.Rect, num int, heavy bool, monW, monH, canvasW, canvasH int) {
	x1 := rect.X * canvasW / monW
	y1 := rect.Y * canvasH / monH
	x2 := (rect.X + rect.Width) * canvasW / monW
	y2 := (rect.Y + rect.Height) * canvasH / monH

	x1 = max(x1, 1)
	y1 = max(y1, 1)
	x2 = min(x2, canvasW-2)
	y2 = min(y2, canvasH-2)
	if x2 <= x1 || y2 <= y1 {
		return
	}

	h, v, tl, tr, bl, br := '─', '│', '┌', '┐', '└', '┘'
	if heavy {
		h, v, tl, tr, bl, br = '━', '┃', '┏', '┓', '┗', '┛'
	}

	// Clear the interior so a raised window hides what is below it.
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			canvas[y][x] = ' '
		}
	}
	for x := x1; x <= x2; x++ {
		canvas[y1][x] = h
		canvas[y2][x] = h
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = v
		canvas[y][x2] = v
	}
	canvas[y1][x1] = tl
	canvas[y1][x2] = tr
	canvas[y2][x1] = bl
	canvas[y2][x2] = br

	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 {
		label := []rune(strconv.Itoa(num))
		startX := centerX - len(label)/2
		for i, r := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = r
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	lines := make([]string, max(height, 0))
	empty := strings.Repeat(" ", max(width, 0))
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
