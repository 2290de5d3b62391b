// Package compare drives the two-way comparison-and-refine loop: two
// concurrently generated designs, pairwise choice, targeted regeneration of
// the rejected slot.
package compare

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tilevision/tilevision/internal/photo"
)

// Phase is the controller's single source of truth.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseGeneratingPair
	PhaseReady
	PhaseRegenerating
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseGeneratingPair:
		return "generating-pair"
	case PhaseReady:
		return "ready"
	case PhaseRegenerating:
		return "regenerating"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Design is one display-ready generated redesign. IDs are minted fresh on
// every replacement so display keys never collide with a discarded result.
type Design struct {
	ID    string
	Image *photo.Encoded
}

// Generator issues one generation call. A nil tile lets the service pick a
// random style.
type Generator interface {
	Generate(ctx context.Context, room, tile *photo.Encoded) (*photo.Encoded, error)
}

// Controller tracks the comparison state machine. All transitions happen on
// the UI loop; async completions are fenced by a monotonically increasing
// request sequence so a late result from a superseded request can never
// overwrite newer state.
type Controller struct {
	phase     Phase
	slots     [2]*Design
	regenSlot int
	seq       uint64

	pairErr  error
	regenErr error
}

func NewController() *Controller {
	return &Controller{phase: PhaseEmpty}
}

func (c *Controller) Phase() Phase { return c.phase }

// Slot returns the design in slot i (0 or 1), or nil.
func (c *Controller) Slot(i int) *Design {
	if i < 0 || i > 1 {
		return nil
	}
	return c.slots[i]
}

// RegeneratingSlot returns the slot being regenerated; valid only in
// PhaseRegenerating.
func (c *Controller) RegeneratingSlot() int { return c.regenSlot }

// PairErr returns the failure that put the controller in PhaseFailed.
func (c *Controller) PairErr() error { return c.pairErr }

// RegenErr returns the inline error from the last failed regeneration; both
// slots keep their last-known-good designs when it is set.
func (c *Controller) RegenErr() error { return c.regenErr }

// BeginPair starts (or retries) the initial two-way generation. Any designs
// on display are discarded; nothing renders until both calls resolve. The
// returned sequence must accompany the completion.
func (c *Controller) BeginPair() uint64 {
	c.seq++
	c.phase = PhaseGeneratingPair
	c.slots = [2]*Design{}
	c.pairErr = nil
	c.regenErr = nil
	return c.seq
}

// CommitPair applies a completed pair generation. Stale completions (a newer
// request has been issued since) are discarded and the return is false.
func (c *Controller) CommitPair(seq uint64, images [2]*photo.Encoded, err error) bool {
	if seq != c.seq || c.phase != PhaseGeneratingPair {
		return false
	}
	if err != nil {
		c.phase = PhaseFailed
		c.pairErr = err
		return true
	}
	c.slots[0] = &Design{ID: uuid.NewString(), Image: images[0]}
	c.slots[1] = &Design{ID: uuid.NewString(), Image: images[1]}
	c.phase = PhaseReady
	return true
}

// Choose marks slot keep as preferred and starts regenerating the other
// slot. The chosen slot is never touched. Returns the slot to regenerate and
// the fencing sequence.
func (c *Controller) Choose(keep int) (slot int, seq uint64, err error) {
	if c.phase != PhaseReady {
		return 0, 0, fmt.Errorf("cannot choose in phase %s", c.phase)
	}
	if keep != 0 && keep != 1 {
		return 0, 0, fmt.Errorf("invalid slot %d", keep)
	}
	c.seq++
	c.regenSlot = 1 - keep
	c.phase = PhaseRegenerating
	c.regenErr = nil
	return c.regenSlot, c.seq, nil
}

// CommitRegenerate applies a completed single-slot regeneration. On failure
// the slots keep their last-known-good designs and the error surfaces
// inline. Stale completions are discarded.
func (c *Controller) CommitRegenerate(seq uint64, img *photo.Encoded, err error) bool {
	if seq != c.seq || c.phase != PhaseRegenerating {
		return false
	}
	if err != nil {
		c.regenErr = err
		c.phase = PhaseReady
		return true
	}
	c.slots[c.regenSlot] = &Design{ID: uuid.NewString(), Image: img}
	c.phase = PhaseReady
	return true
}

// GeneratePair issues two independent generation calls concurrently and
// joins them: both-or-error. Slot assignment is positional, fixed at issue
// time, regardless of completion order. Both calls omit the style tile so
// each result is independently randomized.
func GeneratePair(ctx context.Context, g Generator, room *photo.Encoded) ([2]*photo.Encoded, error) {
	var images [2]*photo.Encoded

	group, ctx := errgroup.WithContext(ctx)
	for i := range images {
		group.Go(func() error {
			img, err := g.Generate(ctx, room, nil)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return [2]*photo.Encoded{}, err
	}
	return images, nil
}
