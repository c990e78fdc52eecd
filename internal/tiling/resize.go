package tiling

import (
	"fmt"
	"log"

	"github.com/XclusivVv/hyprland-video-wallpapers/internal/hypr"
)

// Adjacency detection tolerances, in pixels. A candidate counts as adjacent
// when the horizontal gap between the facing edges falls inside
// [minEdgeGap, maxEdgeGap] and the windows overlap vertically.
const (
	minEdgeGap = -20
	maxEdgeGap = 50
	// minFollowWidth is the smallest width a neighbour may be shrunk to.
	minFollowWidth = 100
)

// Edge selects which side of the resized window to search.
type Edge int

const (
	EdgeRight Edge = iota
	EdgeLeft
)

// FindAdjacent returns the window whose facing edge sits closest to the
// given edge of target, or nil when no candidate qualifies.
func FindAdjacent(windows []hypr.Window, target hypr.Window, edge Edge) *hypr.Window {
	var best *hypr.Window
	minGap := maxEdgeGap + 1

	for i := range windows {
		w := &windows[i]
		if w.Address == target.Address {
			continue
		}

		var gap int
		switch edge {
		case EdgeRight:
			gap = w.X() - (target.X() + target.Width())
		case EdgeLeft:
			gap = target.X() - (w.X() + w.Width())
		}
		if gap < minEdgeGap || gap > maxEdgeGap {
			continue
		}
		// Require vertical overlap so a window in a different row is
		// never dragged along.
		if w.Y() >= target.Y()+target.Height() || w.Y()+w.Height() <= target.Y() {
			continue
		}
		if gap < minGap {
			minGap = gap
			best = w
		}
	}
	return best
}

// FollowResize adjusts the neighbours of a manually resized window so the
// configured gap is restored on both sides. Adjustments that would leave a
// neighbour narrower than minFollowWidth are skipped.
func (t *Tiler) FollowResize(address string, workspace int) error {
	windows, err := t.ListTileable(workspace)
	if err != nil {
		return fmt.Errorf("cannot list windows on workspace %d: %w", workspace, err)
	}

	var resized *hypr.Window
	for i := range windows {
		if windows[i].Address == address {
			resized = &windows[i]
			break
		}
	}
	if resized == nil {
		return nil
	}

	gap := t.cfg.GapSize

	if right := FindAdjacent(windows, *resized, EdgeRight); right != nil {
		resizedRight := resized.X() + resized.Width()
		newWidth := right.X() + right.Width() - resizedRight - gap
		if newWidth >= minFollowWidth {
			t.applyRect(right.Address, Rect{
				X:      resizedRight + gap,
				Y:      right.Y(),
				Width:  newWidth,
				Height: right.Height(),
			})
		}
	}

	if left := FindAdjacent(windows, *resized, EdgeLeft); left != nil {
		newWidth := resized.X() - left.X() - gap
		if newWidth >= minFollowWidth {
			resize := fmt.Sprintf("resizewindowpixel exact %d %d,address:%s", newWidth, left.Height(), left.Address)
			if err := t.hypr.Dispatch(resize); err != nil {
				log.Printf("Resize of %s failed: %v", left.Address, err)
			}
		}
	}
	return nil
}
