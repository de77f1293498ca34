package window

// Registry owns every Window record, keyed by ID, and remembers insertion order.
type Registry struct {
	windows map[ID]*Window
	order   []ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{windows: make(map[ID]*Window)}
}

// Add registers a new record for id. It returns the existing record and false
// when id is already known. New windows start Untiled until their first commit.
func (r *Registry) Add(id ID) (*Window, bool) {
	if w, ok := r.windows[id]; ok {
		return w, false
	}
	w := &Window{ID: id, State: Untiled}
	r.windows[id] = w
	r.order = append(r.order, id)
	return w, true
}

// Get looks up a record.
func (r *Registry) Get(id ID) (*Window, bool) {
	w, ok := r.windows[id]
	return w, ok
}

// Remove drops a record. Unknown ids are ignored.
func (r *Registry) Remove(id ID) {
	if _, ok := r.windows[id]; !ok {
		return
	}
	delete(r.windows, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.windows)
}

// All returns the records in insertion order.
func (r *Registry) All() []*Window {
	out := make([]*Window, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.windows[id])
	}
	return out
}

// RequestStateChange moves a settled, initialized window to its pending
// variant. Fixed windows, pending windows and unknown ids are left alone.
// It reports whether the state changed.
func (r *Registry) RequestStateChange(id ID) bool {
	w, ok := r.windows[id]
	if !ok || w.Fixed || !w.Initialized || w.State.Pending() {
		return false
	}
	w.State = w.State.Advance()
	return true
}
