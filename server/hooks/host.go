package hooks

import (
	"balancechart/server/fastview"
)

// Hook receives the lifecycle signals of the one element it is bound to.
// For a given element, signals arrive in the order mounted, (updated)*, destroyed,
// and never concurrently.
type Hook interface {
	Mounted(*Element)
	Updated(*Element)
	Destroyed(*Element)
}

// Registry maps hook names to factories; each bound element gets a fresh instance.
type Registry map[string]func() Hook

// ElementSpec is the desired state of one element of a page render.
type ElementSpec struct {
	ID    string
	Hook  string
	Attrs map[string]string
}

type binding struct {
	el   *Element
	hook Hook
}

// Host plays the part of the page runtime for the elements under one container: it
// diffs each render against what was rendered before, emits the ops that patch the
// page, and delivers hook signals. A Host is not safe for concurrent use; Run gives
// it a single goroutine.
type Host struct {
	container string
	registry  Registry
	elements  map[string]*binding
	order     []string
	pending   []fastview.EleUpdate

	// OnPanic, if set, is called when a hook panics. The host keeps running either way.
	OnPanic func(elementID string, recovered interface{})
}

// NewHost returns a host whose elements are appended to the container element.
func NewHost(container string, registry Registry) *Host {
	return &Host{
		container: container,
		registry:  registry,
		elements:  map[string]*binding{},
	}
}

// Len returns the number of rendered elements.
func (h *Host) Len() int {
	return len(h.order)
}

// Apply patches the page to match specs and returns the resulting element updates, in
// the order they must be applied. Elements absent from specs are destroyed first,
// then new elements are mounted and changed ones updated, in spec order. An element
// whose hook name changes is destroyed and mounted again.
func (h *Host) Apply(specs []ElementSpec) []fastview.EleUpdate {
	wanted := make(map[string]ElementSpec, len(specs))
	for _, spec := range specs {
		if _, dup := wanted[spec.ID]; !dup && spec.ID != "" {
			wanted[spec.ID] = spec
		}
	}

	for _, id := range append([]string(nil), h.order...) {
		if spec, ok := wanted[id]; !ok || spec.Hook != h.elements[id].el.hook {
			h.detach(id)
		}
	}

	seen := map[string]bool{}
	for _, spec := range specs {
		if seen[spec.ID] || spec.ID == "" {
			continue
		}
		seen[spec.ID] = true

		if b, ok := h.elements[spec.ID]; ok {
			h.update(b, spec.Attrs)
		} else {
			h.attach(spec)
		}
	}
	return h.flush()
}

// DetachAll destroys every element, e.g. when the page goes away.
func (h *Host) DetachAll() []fastview.EleUpdate {
	for _, id := range append([]string(nil), h.order...) {
		h.detach(id)
	}
	return h.flush()
}

// Run applies each render received on renders until done is closed or renders is
// closed, then detaches every element. The returned chan carries the updates of each
// render and is closed when Run is finished.
func (h *Host) Run(
	done <-chan struct{},
	renders <-chan []ElementSpec,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		send := func(updates []fastview.EleUpdate) bool {
			if len(updates) == 0 {
				return true
			}
			select {
			case output <- updates:
				return true
			case <-done:
				return false
			}
		}

		for {
			select {
			case <-done:
				// The page is gone; nobody will apply the ops, but resources must be released.
				_ = h.DetachAll()
				return
			case specs, ok := <-renders:
				if !ok {
					send(h.DetachAll())
					return
				}
				if !send(h.Apply(specs)) {
					_ = h.DetachAll()
					return
				}
			}
		}
	}()

	return output
}

func (h *Host) attach(spec ElementSpec) {
	el := NewElement(spec.ID, spec.Hook, spec.Attrs, h.push)
	b := &binding{el: el}
	if factory, ok := h.registry[spec.Hook]; ok && factory != nil {
		b.hook = factory()
	}
	h.elements[spec.ID] = b
	h.order = append(h.order, spec.ID)

	h.push(fastview.EleUpdate{
		EleId: h.container,
		Ops:   []fastview.Op{{Key: fastview.AppendHTML, Value: el.markup()}},
	})
	if b.hook != nil {
		h.signal(el.id, func() { b.hook.Mounted(el) })
	}
}

func (h *Host) update(b *binding, attrs map[string]string) {
	ops := b.el.setAttrs(attrs)
	if len(ops) == 0 {
		return
	}
	h.push(fastview.EleUpdate{EleId: b.el.id, Ops: ops})
	if b.hook != nil {
		h.signal(b.el.id, func() { b.hook.Updated(b.el) })
	}
}

func (h *Host) detach(id string) {
	b, ok := h.elements[id]
	if !ok {
		return
	}
	if b.hook != nil {
		h.signal(id, func() { b.hook.Destroyed(b.el) })
	}
	h.push(fastview.EleUpdate{
		EleId: id,
		Ops:   []fastview.Op{{Key: fastview.Remove}},
	})

	delete(h.elements, id)
	for i, oid := range h.order {
		if oid == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

func (h *Host) signal(id string, fn func()) {
	defer func() {
		if r := recover(); r != nil && h.OnPanic != nil {
			h.OnPanic(id, r)
		}
	}()
	fn()
}

func (h *Host) push(updates ...fastview.EleUpdate) {
	h.pending = append(h.pending, updates...)
}

func (h *Host) flush() (updates []fastview.EleUpdate) {
	updates, h.pending = h.pending, nil
	return
}
