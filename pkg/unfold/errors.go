package unfold

import (
	"errors"
	"fmt"

	"papernet/pkg/pack"
)

// ErrInternal marks a broken invariant in the join bookkeeping. It is a bug,
// not something a model can be fixed for.
var ErrInternal = errors.New("internal error while joining islands; please report it with the model")

// ErrIslandTooBig means an island does not fit onto a page even after
// rotation.
var ErrIslandTooBig = fmt.Errorf("an island does not fit onto the page; downscale the model or split the island: %w", pack.ErrTooBig)

// IslandError reports the faces of the island that caused an error, so that
// they can be highlighted.
type IslandError struct {
	Island int
	Faces  []int
	Err    error
}

func (e *IslandError) Error() string {
	return fmt.Sprintf("island %d (%d faces): %s", e.Island, len(e.Faces), e.Err)
}

func (e *IslandError) Unwrap() error {
	return e.Err
}
