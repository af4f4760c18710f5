package scraper

import "sync"

// Registry maps account display names to the scraper that serves them.
// Registration happens at startup; lookups happen from worker goroutines.
type Registry struct {
	scrapers map[string]Scraper
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		scrapers: make(map[string]Scraper),
	}
}

// Register adds a scraper under its supported account name. A later
// registration with the same name replaces the earlier one.
func (r *Registry) Register(s Scraper) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scrapers[s.SupportedAccountName()] = s
}

// Get returns the scraper registered for the account name, or nil when none
// exists.
func (r *Registry) Get(accountName string) Scraper {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.scrapers[accountName]
}

// Names returns the registered account names in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scrapers))
	for name := range r.scrapers {
		names = append(names, name)
	}
	return names
}
