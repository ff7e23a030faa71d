// Package memory implements an in-memory customer repository.
//
// Customers are held in a single slice guarded by a mutex; insertion order
// is the only ordering. There is one repository per process and every
// handler shares it.
package memory

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"customerd/pkg/customer"
)

// Repository provides an in-memory implementation of customer.Repository.
type Repository struct {
	mu        sync.RWMutex
	customers []customer.Customer
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{}
}

// FromFile creates a repository seeded from a JSON file containing an array
// of customers. If the file cannot be opened or decoded the repository
// starts empty; a missing seed file is not an error.
func FromFile(path string) *Repository {
	f, err := os.Open(path)
	if err != nil {
		return New()
	}
	defer f.Close()

	var customers []customer.Customer
	if err := json.NewDecoder(f).Decode(&customers); err != nil {
		return New()
	}
	return &Repository{customers: customers}
}

// Create appends the customer. It returns customer.ErrExists if any stored
// customer already has the same guid; the collection is left unchanged in
// that case. An empty guid is an ordinary value and gets no special
// treatment beyond the uniqueness scan.
func (r *Repository) Create(ctx context.Context, c customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.customers {
		if r.customers[i].GUID == c.GUID {
			return customer.ErrExists
		}
	}
	r.customers = append(r.customers, c)
	return nil
}

// Get retrieves a copy of the customer with the given guid.
func (r *Repository) Get(ctx context.Context, guid string) (customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.customers {
		if r.customers[i].GUID == guid {
			return r.customers[i], nil
		}
	}
	return customer.Customer{}, customer.ErrNotFound
}

// List returns a snapshot copy of all customers in insertion order. The
// snapshot reflects a single consistent point in time.
func (r *Repository) List(ctx context.Context) ([]customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]customer.Customer, len(r.customers))
	copy(out, r.customers)
	return out, nil
}

// Update replaces the stored customer whose guid matches c.GUID in place,
// keeping its position. All fields are overwritten; this is a full replace,
// not a merge. Returns customer.ErrNotFound if no guid matches.
func (r *Repository) Update(ctx context.Context, c customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.customers {
		if r.customers[i].GUID == c.GUID {
			r.customers[i] = c
			return nil
		}
	}
	return customer.ErrNotFound
}

// Delete removes every customer with the given guid in a single filtering
// pass under one lock acquisition, preserving the relative order of the
// remaining customers. Returns customer.ErrNotFound if nothing was removed.
func (r *Repository) Delete(ctx context.Context, guid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.customers[:0]
	for _, c := range r.customers {
		if c.GUID != guid {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(r.customers) {
		return customer.ErrNotFound
	}
	r.customers = kept
	return nil
}
