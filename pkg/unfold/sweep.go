package unfold

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// sweepResult is the outcome of a sweepline step.
type sweepResult int

const (
	sweepClear sweepResult = iota
	// sweepReorder means the quick sweepline found its order inconsistent
	// and the exhaustive one has to decide.
	sweepReorder
	// sweepCrossing means two segments cross or overlap.
	sweepCrossing
)

func (r sweepResult) String() string {
	switch r {
	case sweepClear:
		return "clear"
	case sweepReorder:
		return "reorder"
	case sweepCrossing:
		return "crossing"
	}
	return "unknown"
}

// segment is a boundary edge as seen by the overlap tests. Segments of the
// island being absorbed are previews: they have no UVEdge and use the
// vertices the join would produce.
type segment struct {
	va, vb      *UVVertex
	min, max    *UVVertex
	bottom, top float64
	upwards     bool
	// edge is nil for previews.
	edge *UVEdge
}

func edgeSegment(e *UVEdge) *segment {
	return &segment{
		va: e.VA, vb: e.VB,
		min: e.Min, max: e.Max,
		bottom: e.Bottom, top: e.Top,
		upwards: e.isUpwards(),
		edge:    e,
	}
}

func phantomSegment(va, vb *UVVertex, flip bool) *segment {
	if flip {
		va, vb = vb, va
	}
	s := &segment{va: va, vb: vb, bottom: va.Co.Y, top: vb.Co.Y}
	if keyLess(va, vb) {
		s.min, s.max = va, vb
	} else {
		s.min, s.max = vb, va
	}
	if s.top < s.bottom {
		s.bottom, s.top = s.top, s.bottom
	}
	s.upwards = keyLess(va, vb)
	return s
}

func (s *segment) isPhantom() bool {
	return s.edge == nil
}

// isBelow orders two segments that are both active on the sweepline. When
// correctGeometry is set, collinear overlapping segments report
// sweepReorder; otherwise they report sweepCrossing unless they run in
// opposite directions.
func isBelow(s, other *segment, correctGeometry bool) (bool, sweepResult) {
	if s == other {
		return false, sweepClear
	}
	if s.top < other.bottom {
		return true, sweepClear
	}
	if other.top < s.bottom {
		return false, sweepClear
	}
	if !keyLess(other.min, s.max) {
		return true, sweepClear
	}
	if !keyLess(s.min, other.max) {
		return false, sweepClear
	}

	sVector := r2.Sub(s.max.Co, s.min.Co)
	minToMin := r2.Sub(other.min.Co, s.min.Co)
	crossB1 := r2.Cross(sVector, minToMin)
	crossB2 := r2.Cross(sVector, r2.Sub(other.max.Co, s.min.Co))
	if crossB2 < crossB1 {
		crossB1, crossB2 = crossB2, crossB1
	}
	if crossB2 > 0 && (crossB1 > 0 || (crossB1 == 0 && !s.upwards)) {
		return true, sweepClear
	}
	if crossB1 < 0 && (crossB2 < 0 || (crossB2 == 0 && s.upwards)) {
		return false, sweepClear
	}

	otherVector := r2.Sub(other.max.Co, other.min.Co)
	crossA1 := r2.Cross(otherVector, r2.Scale(-1, minToMin))
	crossA2 := r2.Cross(otherVector, r2.Sub(s.max.Co, other.min.Co))
	if crossA2 < crossA1 {
		crossA1, crossA2 = crossA2, crossA1
	}
	if crossA2 > 0 && (crossA1 > 0 || (crossA1 == 0 && !other.upwards)) {
		return false, sweepClear
	}
	if crossA1 < 0 && (crossA2 < 0 || (crossA2 == 0 && other.upwards)) {
		return true, sweepClear
	}

	if crossA1 == 0 && crossB1 == 0 && crossA2 == 0 && crossB2 == 0 {
		if correctGeometry {
			return false, sweepReorder
		}
		if s.upwards == other.upwards {
			return false, sweepCrossing
		}
		return false, sweepClear
	}
	if s.min.Co == other.min.Co || s.max.Co == other.max.Co {
		return crossA2 > crossB2, sweepClear
	}
	return false, sweepCrossing
}

type sweepline interface {
	add(s *segment) sweepResult
	remove(s *segment) sweepResult
}

// quickSweepline keeps the active segments sorted and compares only
// neighbours. It relies on the segments never crossing; when the order turns
// out inconsistent it reports sweepReorder.
type quickSweepline struct {
	children []*segment
}

func (sl *quickSweepline) add(item *segment) sweepResult {
	low, high := 0, len(sl.children)
	for low < high {
		mid := (low + high) / 2
		below, r := isBelow(sl.children[mid], item, true)
		if r != sweepClear {
			return r
		}
		if below {
			low = mid + 1
		} else {
			high = mid
		}
	}
	sl.children = append(sl.children, nil)
	copy(sl.children[low+1:], sl.children[low:])
	sl.children[low] = item
	return sweepClear
}

func (sl *quickSweepline) remove(item *segment) sweepResult {
	index := -1
	for i, child := range sl.children {
		if child == item {
			index = i
			break
		}
	}
	if index < 0 {
		return sweepClear
	}
	sl.children = append(sl.children[:index], sl.children[index+1:]...)
	if index > 0 && index < len(sl.children) {
		below, r := isBelow(sl.children[index], sl.children[index-1], true)
		if r != sweepClear {
			return r
		}
		if below {
			return sweepReorder
		}
	}
	return sweepClear
}

// bruteSweepline compares every new segment with all active ones.
type bruteSweepline struct {
	children []*segment
}

func (sl *bruteSweepline) add(item *segment) sweepResult {
	for _, child := range sl.children {
		if child.min != item.min && child.max != item.max {
			if _, r := isBelow(item, child, false); r != sweepClear {
				return r
			}
		}
	}
	sl.children = append(sl.children, item)
	return sweepClear
}

func (sl *bruteSweepline) remove(item *segment) sweepResult {
	for i, child := range sl.children {
		if child == item {
			last := len(sl.children) - 1
			sl.children[i] = sl.children[last]
			sl.children = sl.children[:last]
			break
		}
	}
	return sweepClear
}

// sweep runs the segments through the sweepline in lexicographic order and
// returns the first result that is not clear.
func sweep(sl sweepline, segments []*segment) sweepResult {
	adds := make([]*segment, len(segments))
	copy(adds, segments)
	// both lists are consumed from the back
	sort.SliceStable(adds, func(i, j int) bool { return keyLess(adds[j].min, adds[i].min) })
	removes := make([]*segment, len(adds))
	copy(removes, adds)
	sort.SliceStable(removes, func(i, j int) bool { return keyLess(removes[j].max, removes[i].max) })

	for len(removes) > 0 {
		next := removes[len(removes)-1]
		for len(adds) > 0 && !keyLess(next.max, adds[len(adds)-1].min) {
			if r := sl.add(adds[len(adds)-1]); r != sweepClear {
				return r
			}
			adds = adds[:len(adds)-1]
		}
		if r := sl.remove(next); r != sweepClear {
			return r
		}
		removes = removes[:len(removes)-1]
	}
	return sweepClear
}
