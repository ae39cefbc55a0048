// Package message aggregates per-signal plans plus message-level
// constants into one bundle, and implements the bulk decode-from-slice
// that is the runtime equivalent of what the emitter prints as a
// generated accessor struct's Unmarshal.
package message

import (
	"errors"
	"fmt"
	"sort"

	"dbc-bitgen/internal/desc"
	"dbc-bitgen/internal/plan"
)

// ErrBadLength is returned by Decode when the payload length does not
// match the message's declared DLC.
var ErrBadLength = errors.New("message: payload length does not match DLC")

// SkipNote records a per-signal generator-time problem that did not
// abort the whole message: generator-time errors are per-signal,
// best-effort partial generation.
type SkipNote struct {
	Signal string
	Reason string
}

// Plan is the compiled bundle for one message: its constants plus
// every signal that planned successfully.
type Plan struct {
	Name      string
	ID        uint32
	Extended  bool
	DLC       int
	CycleTime *uint32
	Signals   []*plan.SignalPlan
	Skipped   []SkipNote
}

// Build compiles a MessageDescription into a Plan. A signal whose bit
// footprint escapes the payload is skipped (recorded in Skipped) and
// does not prevent the rest of the message from being built: any
// message whose identifier, length, and signal list are intact is
// eligible for accessor generation.
//
// When wanted is non-nil, only signals whose name appears in it are
// planned; the rest are elided entirely (opt-in filtering), not even
// recorded as skipped, since they were never requested.
func Build(m desc.MessageDescription, wanted map[string]bool) *Plan {
	p := &Plan{
		Name:      m.Name,
		ID:        m.ID,
		Extended:  m.Extended,
		DLC:       int(m.DLC),
		CycleTime: m.CycleTime,
	}
	for _, sig := range m.Signals {
		if wanted != nil && !wanted[sig.Name] {
			continue
		}
		sp, err := plan.PlanSignal(sig, p.DLC)
		if err != nil {
			p.Skipped = append(p.Skipped, SkipNote{Signal: sig.Name, Reason: err.Error()})
			continue
		}
		p.Signals = append(p.Signals, sp)
	}
	sort.Slice(p.Signals, func(i, j int) bool { return p.Signals[i].Name < p.Signals[j].Name })
	return p
}

// Decode runs bulk decode: every signal's decode op applied to
// payload, keyed by signal name. Fails fast with ErrBadLength if
// payload is not exactly DLC bytes; individual signal decodes are
// then infallible.
func (p *Plan) Decode(payload []byte) (map[string]any, error) {
	if len(payload) != p.DLC {
		return nil, fmt.Errorf("%w: message %s expects %d bytes, got %d", ErrBadLength, p.Name, p.DLC, len(payload))
	}
	out := make(map[string]any, len(p.Signals))
	for _, s := range p.Signals {
		out[s.Name] = s.Decode(payload)
	}
	return out, nil
}

// Signal looks up one signal's plan by name.
func (p *Plan) Signal(name string) (*plan.SignalPlan, bool) {
	for _, s := range p.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Catalog indexes a set of compiled message plans by both ID and name,
// generalized from a flat physical-value lookup to a full Plan per
// message.
type Catalog struct {
	byID   map[uint32]*Plan
	byName map[string]*Plan
}

// NewCatalog indexes plans, which must have unique IDs and names.
func NewCatalog(plans []*Plan) (*Catalog, error) {
	c := &Catalog{
		byID:   make(map[uint32]*Plan, len(plans)),
		byName: make(map[string]*Plan, len(plans)),
	}
	for _, p := range plans {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("message: duplicate message id 0x%X (%s)", p.ID, p.Name)
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("message: duplicate message name %q", p.Name)
		}
		c.byID[p.ID] = p
		c.byName[p.Name] = p
	}
	return c, nil
}

func (c *Catalog) ByID(id uint32) (*Plan, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *Catalog) ByName(name string) (*Plan, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// Names returns every message name in the catalog, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.byName))
	for name := range c.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
