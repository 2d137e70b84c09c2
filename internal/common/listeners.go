package common

import (
	"slices"
	"sync"
)

// Listeners is a plain list of observer callbacks.
type Listeners[T any] struct {
	fns    map[int]func(T)
	nextID int
	mu     sync.RWMutex
}

// Subscribe registers fn and returns a function that removes it again.
func (l *Listeners[T]) Subscribe(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

// Notify calls every registered listener with v, in subscription order.
func (l *Listeners[T]) Notify(v T) {
	l.mu.RLock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	fns := make([]func(T), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of registered listeners.
func (l *Listeners[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fns)
}

