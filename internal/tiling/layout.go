package tiling

// Rect represents a window position and size in absolute pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// gridCols is the fixed column count used once more than four windows share
// a workspace.
const gridCols = 3

// ComputeLayout returns the target rectangle for each of n windows on the
// given monitor. The result is deterministic for identical inputs and
// depends on nothing but its arguments.
//
// Patterns by window count:
//
//	1  full usable area
//	2  two equal columns
//	3  full-height column left, two stacked cells right
//	4  2×2 grid
//	5+ 3-column grid, row-major, ceil(n/3) rows
//
// The usable area is the monitor minus a uniform outer gap, with topGap
// extra pixels reserved above the first row for a status bar. Integer
// division rounds down; leftover pixels are left as slack at the right and
// bottom edges.
func ComputeLayout(n int, monitor Rect, gap, topGap int) []Rect {
	if n <= 0 {
		return nil
	}

	usableWidth := monitor.Width - gap*2
	usableHeight := monitor.Height - topGap - gap*2
	startX := monitor.X + gap
	startY := monitor.Y + gap + topGap

	halfWidth := (usableWidth - gap) / 2
	halfHeight := (usableHeight - gap) / 2
	rightX := startX + halfWidth + gap
	lowerY := startY + halfHeight + gap

	switch n {
	case 1:
		return []Rect{
			{X: startX, Y: startY, Width: usableWidth, Height: usableHeight},
		}
	case 2:
		return []Rect{
			{X: startX, Y: startY, Width: halfWidth, Height: usableHeight},
			{X: rightX, Y: startY, Width: halfWidth, Height: usableHeight},
		}
	case 3:
		return []Rect{
			{X: startX, Y: startY, Width: halfWidth, Height: usableHeight},
			{X: rightX, Y: startY, Width: halfWidth, Height: halfHeight},
			{X: rightX, Y: lowerY, Width: halfWidth, Height: halfHeight},
		}
	case 4:
		return []Rect{
			{X: startX, Y: startY, Width: halfWidth, Height: halfHeight},
			{X: rightX, Y: startY, Width: halfWidth, Height: halfHeight},
			{X: startX, Y: lowerY, Width: halfWidth, Height: halfHeight},
			{X: rightX, Y: lowerY, Width: halfWidth, Height: halfHeight},
		}
	}

	rows := (n + gridCols - 1) / gridCols
	cellWidth := (usableWidth - gap*(gridCols-1)) / gridCols
	cellHeight := (usableHeight - gap*(rows-1)) / rows

	positions := make([]Rect, n)
	for i := 0; i < n; i++ {
		col := i % gridCols
		row := i / gridCols
		positions[i] = Rect{
			X:      startX + col*(cellWidth+gap),
			Y:      startY + row*(cellHeight+gap),
			Width:  cellWidth,
			Height: cellHeight,
		}
	}
	return positions
}

// ProvisionalRect returns the near-full-area placement a freshly opened
// window gets before the real layout pass runs, so it never flashes at
// whatever size the compositor mapped it.
func ProvisionalRect(monitor Rect, gap, topGap int) Rect {
	return Rect{
		X:      monitor.X + gap,
		Y:      monitor.Y + gap + topGap,
		Width:  monitor.Width - gap*2,
		Height: monitor.Height - topGap - gap,
	}
}
