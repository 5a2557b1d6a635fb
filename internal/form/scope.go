package form

import "sync"

// Scope collects cleanup functions and runs them once, in reverse order, on Close.
type Scope struct {
	mu       sync.Mutex
	cleanups []func()
	closed   bool
}

// Defer adds a cleanup. On a closed scope the cleanup runs immediately.
func (s *Scope) Defer(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// Watch registers fn on w and ties its unregistration to the scope.
func (s *Scope) Watch(w *Watchers, field string, fn Listener) {
	s.Defer(w.Watch(field, fn))
}

// Close runs the collected cleanups. Subsequent calls do nothing.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
