package fzx

import "fmt"

// Handle addresses a body stored in a Pool. A handle goes stale when its
// body is released, even if the slot is later reused. The zero Handle never
// resolves.
type Handle struct {
	index      uint32
	generation uint32
}

func (h Handle) IsZero() bool { return h == Handle{} }

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.index, h.generation)
}

type poolSlot struct {
	body       *Body
	generation uint32
}

// Pool owns bodies on behalf of the application. The physics System only
// keeps handles into it, so releasing a body here is enough to take it out
// of the simulation.
type Pool struct {
	slots []poolSlot
	free  []uint32
	live  int
}

func NewPool() *Pool {
	return &Pool{}
}

// Insert stores b and returns its handle. Inserting nil returns the zero
// Handle.
func (p *Pool) Insert(b *Body) Handle {
	if b == nil {
		return Handle{}
	}
	p.live++

	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		p.slots[idx].body = b
		return Handle{index: idx, generation: p.slots[idx].generation}
	}

	p.slots = append(p.slots, poolSlot{body: b, generation: 1})
	return Handle{index: uint32(len(p.slots) - 1), generation: 1}
}

// Get resolves h, reporting false for stale or zero handles.
func (p *Pool) Get(h Handle) (*Body, bool) {
	if int(h.index) >= len(p.slots) {
		return nil, false
	}
	slot := p.slots[h.index]
	if slot.body == nil || slot.generation != h.generation {
		return nil, false
	}
	return slot.body, true
}

// MustGet is Get for handles the caller knows to be live.
func (p *Pool) MustGet(h Handle) *Body {
	b, ok := p.Get(h)
	if !ok {
		panic(fmt.Sprintf("fzx: stale body handle %s", h))
	}
	return b
}

// Release drops the body behind h and invalidates every copy of h.
func (p *Pool) Release(h Handle) bool {
	if _, ok := p.Get(h); !ok {
		return false
	}
	slot := &p.slots[h.index]
	slot.body = nil
	slot.generation++
	p.free = append(p.free, h.index)
	p.live--
	return true
}

func (p *Pool) Len() int { return p.live }

// Handles lists every live handle in slot order.
func (p *Pool) Handles() []Handle {
	out := make([]Handle, 0, p.live)
	for i, slot := range p.slots {
		if slot.body != nil {
			out = append(out, Handle{index: uint32(i), generation: slot.generation})
		}
	}
	return out
}
