package form

import "sync"

// Listener is called with the new value after a watched field changes.
type Listener func(field, value string)

type registration struct {
	id int
	fn Listener
}

// Watchers keeps change listeners per field. The zero value is ready to use.
type Watchers struct {
	mu      sync.Mutex
	nextID  int
	byField map[string][]registration
}

// Watch registers fn for field and returns the function that unregisters it.
// Calling the returned function more than once is a no-op.
func (w *Watchers) Watch(field string, fn Listener) (unregister func()) {
	w.mu.Lock()
	if w.byField == nil {
		w.byField = make(map[string][]registration)
	}
	w.nextID++
	id := w.nextID
	w.byField[field] = append(w.byField[field], registration{id: id, fn: fn})
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { w.remove(field, id) })
	}
}

// Notify calls the listeners of field in registration order.
// Listeners run outside the lock and may register or unregister others.
func (w *Watchers) Notify(field, value string) {
	w.mu.Lock()
	regs := append([]registration(nil), w.byField[field]...)
	w.mu.Unlock()

	for _, reg := range regs {
		reg.fn(field, value)
	}
}

// Len returns the number of live registrations.
func (w *Watchers) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for _, regs := range w.byField {
		n += len(regs)
	}
	return n
}

func (w *Watchers) remove(field string, id int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	regs := w.byField[field]
	for i, reg := range regs {
		if reg.id == id {
			w.byField[field] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(w.byField[field]) == 0 {
		delete(w.byField, field)
	}
}
