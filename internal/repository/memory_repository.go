package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fairyhunter13/coupon-api/internal/model"
	"github.com/fairyhunter13/coupon-api/internal/service"
)

// SeedCoupons returns the sample records loaded at startup.
func SeedCoupons(now time.Time) []model.Coupon {
	return []model.Coupon{
		{ID: 1, Name: "10OFF", Percent: 10, IsActive: true, Created: now, LastUpdated: now},
		{ID: 2, Name: "20OFF", Percent: 20, IsActive: false, Created: now, LastUpdated: now},
	}
}

// MemoryCouponRepository keeps coupons in an ordered in-process slice.
// All reads and writes go through one RWMutex: writes serialize and reads
// observe the latest committed state. Callers always receive copies.
type MemoryCouponRepository struct {
	mu      sync.RWMutex
	coupons []model.Coupon
}

// NewMemoryCouponRepository creates a repository holding the given coupons in order.
func NewMemoryCouponRepository(seed ...model.Coupon) *MemoryCouponRepository {
	return &MemoryCouponRepository{coupons: slices.Clone(seed)}
}

// Ping always succeeds; the store lives in process memory.
func (r *MemoryCouponRepository) Ping(ctx context.Context) error {
	return nil
}

// List returns a copy of all coupons in insertion order.
func (r *MemoryCouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Coupon, len(r.coupons))
	copy(out, r.coupons)
	return out, nil
}

// GetByID returns the coupon with the given id, or nil, nil if it is absent.
func (r *MemoryCouponRepository) GetByID(ctx context.Context, id int) (*model.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexByID(id); i >= 0 {
		c := r.coupons[i]
		return &c, nil
	}
	return nil, nil
}

// GetByName returns the coupon whose name matches case-insensitively, or nil, nil.
func (r *MemoryCouponRepository) GetByName(ctx context.Context, name string) (*model.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexByName(name); i >= 0 {
		c := r.coupons[i]
		return &c, nil
	}
	return nil, nil
}

// Insert appends the coupon with Id = max(Id) + 1 and writes the Id back.
// Returns service.ErrCouponExists if the name is already taken.
func (r *MemoryCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByName(coupon.Name) >= 0 {
		return service.ErrCouponExists
	}

	maxID := 0
	for _, c := range r.coupons {
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	coupon.ID = maxID + 1
	r.coupons = append(r.coupons, *coupon)
	return nil
}

// Update replaces Name, Percent, IsActive and LastUpdated of the coupon with the same Id.
// The stored Created is written back to coupon.
// Returns service.ErrCouponNotFound or service.ErrCouponConflict.
func (r *MemoryCouponRepository) Update(ctx context.Context, coupon *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(coupon.ID)
	if i < 0 {
		return service.ErrCouponNotFound
	}
	if j := r.indexByName(coupon.Name); j >= 0 && j != i {
		return service.ErrCouponConflict
	}

	stored := &r.coupons[i]
	stored.Name = coupon.Name
	stored.Percent = coupon.Percent
	stored.IsActive = coupon.IsActive
	stored.LastUpdated = coupon.LastUpdated
	coupon.Created = stored.Created
	return nil
}

// Delete removes the coupon with the given id, reporting whether it existed.
func (r *MemoryCouponRepository) Delete(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return false, nil
	}
	r.coupons = slices.Delete(r.coupons, i, i+1)
	return true, nil
}

// indexByID and indexByName must be called with r.mu held.
func (r *MemoryCouponRepository) indexByID(id int) int {
	return slices.IndexFunc(r.coupons, func(c model.Coupon) bool { return c.ID == id })
}

func (r *MemoryCouponRepository) indexByName(name string) int {
	return slices.IndexFunc(r.coupons, func(c model.Coupon) bool { return strings.EqualFold(c.Name, name) })
}
