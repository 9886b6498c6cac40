// Package requests wraps a search server with a sliding one-day window
// (one slot per request, 1440 slots) that counts how many recent requests
// produced no results.
package requests

import (
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/search"
)

const minutesInDay = 1440

// Window executes queries against a search.Server and tracks empty-result
// requests over the last minutesInDay requests.
type Window struct {
	mu            sync.Mutex
	server        *search.Server
	slots         []bool // ring buffer; true marks a no-result request
	head          int
	count         int
	noResultCount int
}

// NewWindow creates a Window over the given server.
func NewWindow(server *search.Server) *Window {
	return &Window{
		server: server,
		slots:  make([]bool, minutesInDay),
	}
}

// AddFindRequest runs FindTop and records whether it came back empty.
func (w *Window) AddFindRequest(rawQuery string) ([]search.Document, error) {
	return w.record(func() ([]search.Document, error) {
		return w.server.FindTop(rawQuery)
	})
}

// AddFindRequestStatus runs FindTopStatus and records the outcome.
func (w *Window) AddFindRequestStatus(rawQuery string, status search.DocumentStatus) ([]search.Document, error) {
	return w.record(func() ([]search.Document, error) {
		return w.server.FindTopStatus(rawQuery, status)
	})
}

// AddFindRequestFunc runs FindTopFunc and records the outcome.
func (w *Window) AddFindRequestFunc(rawQuery string, pred search.Predicate) ([]search.Document, error) {
	return w.record(func() ([]search.Document, error) {
		return w.server.FindTopFunc(rawQuery, pred)
	})
}

// AddFindRequestPolicy runs FindTopPolicy and records the outcome.
func (w *Window) AddFindRequestPolicy(policy search.ExecutionPolicy, rawQuery string) ([]search.Document, error) {
	return w.record(func() ([]search.Document, error) {
		return w.server.FindTopPolicy(policy, rawQuery)
	})
}

// AddFindRequestPolicyStatus runs FindTopPolicyStatus and records the outcome.
func (w *Window) AddFindRequestPolicyStatus(policy search.ExecutionPolicy, rawQuery string, status search.DocumentStatus) ([]search.Document, error) {
	return w.record(func() ([]search.Document, error) {
		return w.server.FindTopPolicyStatus(policy, rawQuery, status)
	})
}

// NoResultCount returns how many of the windowed requests returned nothing.
func (w *Window) NoResultCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.noResultCount
}

// record runs find and, on success, pushes its emptiness into the ring,
// evicting the oldest slot once the window is full. Failed queries are not
// recorded; the window counts served requests only.
func (w *Window) record(find func() ([]search.Document, error)) ([]search.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	docs, err := find()
	if err != nil {
		return nil, err
	}

	if w.count == minutesInDay {
		if w.slots[w.head] {
			w.noResultCount--
		}
		w.head = (w.head + 1) % minutesInDay
		w.count--
	}
	empty := len(docs) == 0
	w.slots[(w.head+w.count)%minutesInDay] = empty
	w.count++
	if empty {
		w.noResultCount++
	}
	return docs, nil
}
