package unfold

type FoldCategory int

const (
	// FoldNone is a fold too flat to be drawn.
	FoldNone FoldCategory = iota
	FoldCut
	FoldConvex
	FoldConcave
)

func (c FoldCategory) String() string {
	switch c {
	case FoldNone:
		return "none"
	case FoldCut:
		return "cut"
	case FoldConvex:
		return "convex"
	case FoldConcave:
		return "concave"
	}
	return "unknown"
}

// Classify tells how the line of uvedge is to be drawn. The line under a
// sticker is folded, not cut. Folds of inside out islands swap direction.
func (u *Unfolder) Classify(uvedge *UVEdge, angleEpsilon float64) FoldCategory {
	edge := u.Edges[u.Mesh.Loops[uvedge.Loop].Edge]
	if edge.IsCut(uvedge.Face.Face) && uvedge.Sticker == nil {
		return FoldCut
	}
	category := FoldNone
	if edge.Angle > angleEpsilon {
		category = FoldConvex
	} else if edge.Angle < -angleEpsilon {
		category = FoldConcave
	}
	if uvedge.Face.Island.IsInsideOut {
		switch category {
		case FoldConvex:
			category = FoldConcave
		case FoldConcave:
			category = FoldConvex
		}
	}
	return category
}
