package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/coupon-api/internal/mapper"
	"github.com/fairyhunter13/coupon-api/internal/model"
)

var tracer = otel.Tracer("github.com/fairyhunter13/coupon-api/internal/service")

// CouponRepositoryInterface defines the interface for coupon data access.
// Implementations serialize writes and re-check name uniqueness on Insert and Update.
type CouponRepositoryInterface interface {
	List(ctx context.Context) ([]model.Coupon, error)
	GetByID(ctx context.Context, id int) (*model.Coupon, error)
	GetByName(ctx context.Context, name string) (*model.Coupon, error)
	Insert(ctx context.Context, coupon *model.Coupon) error
	Update(ctx context.Context, coupon *model.Coupon) error
	Delete(ctx context.Context, id int) (bool, error)
}

// OperationRecorder records the outcome of coupon operations.
type OperationRecorder interface {
	ObserveOperation(operation, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveOperation(string, string) {}

// CouponService provides business logic for coupon operations.
type CouponService struct {
	couponRepo CouponRepositoryInterface
	recorder   OperationRecorder
	now        func() time.Time
}

// NewCouponService creates a new CouponService with the given repository and recorder.
// A nil recorder disables operation metrics.
func NewCouponService(couponRepo CouponRepositoryInterface, recorder OperationRecorder) *CouponService {
	return NewCouponServiceWithClock(couponRepo, recorder, func() time.Time { return time.Now().UTC() })
}

// NewCouponServiceWithClock creates a CouponService with a custom time source.
// Primarily used for testing.
func NewCouponServiceWithClock(couponRepo CouponRepositoryInterface, recorder OperationRecorder, now func() time.Time) *CouponService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &CouponService{
		couponRepo: couponRepo,
		recorder:   recorder,
		now:        now,
	}
}

// List returns every stored coupon in insertion order.
func (s *CouponService) List(ctx context.Context) ([]model.Coupon, error) {
	ctx, span := tracer.Start(ctx, "CouponService.List")
	defer span.End()

	coupons, err := s.couponRepo.List(ctx)
	if err != nil {
		return nil, s.fail(span, "list", fmt.Errorf("list coupons: %w", err))
	}
	span.SetAttributes(attribute.Int("coupon.count", len(coupons)))
	s.recorder.ObserveOperation("list", "success")
	return coupons, nil
}

// GetByID retrieves a coupon by id.
// Returns nil, nil when the coupon doesn't exist; callers answer with an empty result.
func (s *CouponService) GetByID(ctx context.Context, id int) (*model.Coupon, error) {
	ctx, span := tracer.Start(ctx, "CouponService.GetByID", trace.WithAttributes(attribute.Int("coupon.id", id)))
	defer span.End()

	coupon, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(span, "get", fmt.Errorf("get coupon: %w", err))
	}
	s.recorder.ObserveOperation("get", "success")
	return coupon, nil
}

// Create stores a new coupon built from the request and returns its read projection.
// Returns ErrCouponExists if a coupon with the same name exists (case-insensitive).
// Returns ErrInvalidRequest if the request is nil.
func (s *CouponService) Create(ctx context.Context, req *model.CouponCreateDto) (*model.CouponDto, error) {
	ctx, span := tracer.Start(ctx, "CouponService.Create")
	defer span.End()

	if req == nil {
		return nil, s.fail(span, "create", ErrInvalidRequest)
	}
	span.SetAttributes(attribute.String("coupon.name", req.Name))

	existing, err := s.couponRepo.GetByName(ctx, req.Name)
	if err != nil {
		return nil, s.fail(span, "create", fmt.Errorf("get coupon by name: %w", err))
	}
	if existing != nil {
		return nil, s.fail(span, "create", ErrCouponExists)
	}

	coupon, err := mapper.ToCoupon(req)
	if err != nil {
		return nil, s.fail(span, "create", err)
	}
	now := s.now()
	coupon.Created = now
	coupon.LastUpdated = now

	// Insert assigns the Id and re-checks the name under the store lock.
	if err := s.couponRepo.Insert(ctx, coupon); err != nil {
		if errors.Is(err, ErrCouponExists) {
			return nil, s.fail(span, "create", ErrCouponExists)
		}
		return nil, s.fail(span, "create", fmt.Errorf("insert coupon: %w", err))
	}
	span.SetAttributes(attribute.Int("coupon.id", coupon.ID))

	dto, err := mapper.ToCouponDto(coupon)
	if err != nil {
		return nil, s.fail(span, "create", err)
	}
	s.recorder.ObserveOperation("create", "success")
	return dto, nil
}

// Update replaces the name, percent and active flag of an existing coupon.
// Returns:
//   - ErrCouponConflict if another coupon already uses the requested name
//   - ErrCouponNotFound if no coupon has the requested id
//   - ErrInvalidRequest if the request is nil
func (s *CouponService) Update(ctx context.Context, req *model.CouponUpdateDto) (*model.CouponDto, error) {
	ctx, span := tracer.Start(ctx, "CouponService.Update")
	defer span.End()

	if req == nil {
		return nil, s.fail(span, "update", ErrInvalidRequest)
	}
	span.SetAttributes(attribute.Int("coupon.id", req.ID), attribute.String("coupon.name", req.Name))

	// 1. Name may only be shared with the coupon being updated
	sameName, err := s.couponRepo.GetByName(ctx, req.Name)
	if err != nil {
		return nil, s.fail(span, "update", fmt.Errorf("get coupon by name: %w", err))
	}
	if sameName != nil && sameName.ID != req.ID {
		return nil, s.fail(span, "update", ErrCouponConflict)
	}

	// 2. Target must exist
	coupon, err := s.couponRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, s.fail(span, "update", fmt.Errorf("get coupon: %w", err))
	}
	if coupon == nil {
		return nil, s.fail(span, "update", ErrCouponNotFound)
	}

	// 3. Mutate the mutable fields only
	mapper.ApplyUpdate(coupon, req)
	coupon.LastUpdated = s.now()

	if err := s.couponRepo.Update(ctx, coupon); err != nil {
		if errors.Is(err, ErrCouponConflict) || errors.Is(err, ErrCouponNotFound) {
			return nil, s.fail(span, "update", err)
		}
		return nil, s.fail(span, "update", fmt.Errorf("update coupon: %w", err))
	}

	dto, err := mapper.ToCouponDto(coupon)
	if err != nil {
		return nil, s.fail(span, "update", err)
	}
	s.recorder.ObserveOperation("update", "success")
	return dto, nil
}

// Delete physically removes a coupon.
// Returns ErrCouponNotFound if no coupon has the given id.
func (s *CouponService) Delete(ctx context.Context, id int) error {
	ctx, span := tracer.Start(ctx, "CouponService.Delete", trace.WithAttributes(attribute.Int("coupon.id", id)))
	defer span.End()

	removed, err := s.couponRepo.Delete(ctx, id)
	if err != nil {
		return s.fail(span, "delete", fmt.Errorf("delete coupon: %w", err))
	}
	if !removed {
		return s.fail(span, "delete", ErrCouponNotFound)
	}
	s.recorder.ObserveOperation("delete", "success")
	return nil
}

// fail records the error on the span and the operation recorder, then returns it.
func (s *CouponService) fail(span trace.Span, operation string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.recorder.ObserveOperation(operation, outcomeOf(err))
	return err
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrCouponExists), errors.Is(err, ErrCouponConflict):
		return "conflict"
	case errors.Is(err, ErrCouponNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	default:
		return "error"
	}
}
