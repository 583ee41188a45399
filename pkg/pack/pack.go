// Package pack places rectangular items onto as few fixed-size pages as it
// can manage, without overlaps.
package pack

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"papernet/pkg/cfg"
	"papernet/pkg/geometry"
)

// Item is anything with a size that can be positioned on a page.
type Item interface {
	Size() r2.Vec
	Position() r2.Vec
	SetPosition(r2.Vec)
}

var ErrTooBig = errors.New("item is larger than the page")

// TooBigError tells which item does not fit onto a page.
type TooBigError struct {
	Index int
	Size  r2.Vec
	Cage  r2.Vec
}

func (e *TooBigError) Error() string {
	return fmt.Sprintf("item %d (%gx%g) is larger than the page (%gx%g)",
		e.Index, e.Size.X, e.Size.Y, e.Cage.X, e.Cage.Y)
}

func (e *TooBigError) Unwrap() error {
	return ErrTooBig
}

// page is the state of the page being filled.
type page[T Item] struct {
	cage     r2.Vec
	items    []T
	stopsX   []float64
	stopsY   []float64
	occupied map[r2.Vec]bool
	// obstacles holds the placed items, the most recently hit first.
	obstacles []T
}

func newPage[T Item](cage r2.Vec) *page[T] {
	return &page[T]{
		cage:     cage,
		stopsX:   []float64{0},
		stopsY:   []float64{0},
		occupied: make(map[r2.Vec]bool),
	}
}

func box(pos, size r2.Vec) geometry.Rectangle {
	return geometry.Rectangle{Max: size}.Translate(pos)
}

// tryEmplace puts the item at the first pair of stops where it fits,
// trying x stops first.
func (p *page[T]) tryEmplace(item T) bool {
	size := item.Size()
	sheet := box(r2.Vec{}, p.cage)
	for _, x := range p.stopsX {
		if x+size.X > p.cage.X {
			continue
		}
	stops:
		for _, y := range p.stopsY {
			pos := r2.Vec{X: x, Y: y}
			candidate := box(pos, size)
			if p.occupied[pos] || !sheet.Contains(candidate) {
				continue
			}
			for i, obstacle := range p.obstacles {
				at := obstacle.Position()
				if !candidate.Overlaps(box(at, obstacle.Size())) {
					continue
				}
				// every later item at this stop would hit the same obstacle
				if x >= at.X && y >= at.Y {
					p.occupied[pos] = true
				}
				copy(p.obstacles[1:i+1], p.obstacles[:i])
				p.obstacles[0] = obstacle
				continue stops
			}
			item.SetPosition(pos)
			p.items = append(p.items, item)
			p.obstacles = append(p.obstacles, item)
			p.stopsX = append(p.stopsX, x+size.X)
			p.stopsY = append(p.stopsY, y+size.Y)
			return true
		}
	}
	return false
}

// dropPortion sorts the stops and removes those whose gap to the next but
// one stop is below the given quantile of all gaps. The first stop is
// always kept.
func dropPortion(stops []float64, border float64, divisor int) []float64 {
	sort.Float64s(stops)
	if len(stops) < 2 {
		return stops
	}
	distances := make([]float64, len(stops)-1)
	for i := range distances {
		right := border
		if i+2 < len(stops) {
			right = stops[i+2]
		}
		distances[i] = right - stops[i]
	}
	sorted := append([]float64(nil), distances...)
	sort.Float64s(sorted)
	quantile := sorted[len(sorted)/divisor]

	kept := []float64{stops[0]}
	for j := 1; j < len(stops); j++ {
		if distances[j-1] >= quantile {
			kept = append(kept, stops[j])
		}
	}
	return kept
}

// Pages distributes the items onto pages of the cage size, biggest items
// first, and sets their positions relative to their page. No two items on a
// page overlap and none crosses the page border.
func Pages[T Item](items []T, cage r2.Vec) ([][]T, error) {
	for i, item := range items {
		if size := item.Size(); size.X > cage.X || size.Y > cage.Y {
			return nil, &TooBigError{Index: i, Size: size, Cage: cage}
		}
	}

	remaining := append([]T(nil), items...)
	sort.SliceStable(remaining, func(i, j int) bool {
		return r2.Norm2(remaining[i].Size()) > r2.Norm2(remaining[j].Size())
	})
	pruneAt := cfg.StopPruneFactor*len(items) + cfg.StopPruneBase

	var pages [][]T
	for len(remaining) > 0 {
		p := newPage[T](cage)
		placed := make([]bool, len(remaining))
		for i, item := range remaining {
			placed[i] = p.tryEmplace(item)
			if len(p.stopsX)*len(p.stopsX) > pruneAt {
				p.stopsX = dropPortion(p.stopsX, cage.X, 4)
				p.stopsY = dropPortion(p.stopsY, cage.Y, 4)
			}
		}
		if len(p.items) == 0 {
			size := remaining[0].Size()
			return nil, fmt.Errorf("cannot place a %gx%g item: %w", size.X, size.Y, ErrTooBig)
		}
		var rest []T
		for i, item := range remaining {
			if !placed[i] {
				rest = append(rest, item)
			}
		}
		remaining = rest
		pages = append(pages, p.items)
	}
	return pages, nil
}
