// Package errors defines the structured error type shared by every stage of
// an extraction pass, plus a collector for errors raised by concurrent entry
// workers.
package errors

import (
	"errors"
	"sync"
)

// Collector collects errors reported by concurrently running entries.
type Collector struct {
	errors []error
	mutex  sync.RWMutex
}

// NewCollector creates a new error collector
func NewCollector() *Collector {
	return &Collector{
		errors: make([]error, 0),
	}
}

// AddError adds an error to the collector
func (c *Collector) AddError(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, err)
}

// GetErrors returns a copy of the collected errors in arrival order
func (c *Collector) GetErrors() []error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]error, len(c.errors))
	copy(result, c.errors)
	return result
}

// HasErrors returns true if there are any errors
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errors) > 0
}

// GetErrorsByEntry returns errors attributed to a specific entry
func (c *Collector) GetErrorsByEntry(entry string) []error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var entryErrors []error
	for _, err := range c.errors {
		var e *Error
		if errors.As(err, &e) && e.Entry == entry {
			entryErrors = append(entryErrors, err)
		}
	}
	return entryErrors
}

// Err returns the first collected error, or nil. The first error is the one
// that fails the pass; the rest are kept for reporting.
func (c *Collector) Err() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if len(c.errors) == 0 {
		return nil
	}
	return c.errors[0]
}

// Join returns every collected error joined into one value.
func (c *Collector) Join() error {
	return errors.Join(c.GetErrors()...)
}
