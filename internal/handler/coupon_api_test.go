package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/coupon-api/internal/model"
	"github.com/fairyhunter13/coupon-api/internal/repository"
	"github.com/fairyhunter13/coupon-api/internal/service"
)

var seededAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// setupSeededApp wires the real memory store and service behind the handlers.
func setupSeededApp(t *testing.T) *fiber.App {
	t.Helper()
	repo := repository.NewMemoryCouponRepository(repository.SeedCoupons(seededAt)...)
	svc := service.NewCouponService(repo, nil)
	return setupTestApp(svc)
}

func listCoupons(t *testing.T, app *fiber.App) []model.Coupon {
	t.Helper()
	resp, raw := doRequest(t, app, http.MethodGet, "/api/coupons", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return decode[[]model.Coupon](t, raw).Result
}

func getCoupon(t *testing.T, app *fiber.App, id int) *model.Coupon {
	t.Helper()
	resp, raw := doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/coupons/%d", id), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return decode[*model.Coupon](t, raw).Result
}

func TestCouponAPI_CreateAssignsNextIDAndIsRetrievable(t *testing.T) {
	app := setupSeededApp(t)

	resp, raw := doRequest(t, app, http.MethodPost, "/api/coupons", `{"name":"30OFF","percent":30,"isActive":true}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	env := decode[model.CouponDto](t, raw)
	require.True(t, env.IsSuccess)
	assert.Equal(t, fiber.StatusCreated, env.StatusCode)
	assert.Equal(t, 3, env.Result.ID)
	assert.Equal(t, env.Result.Created, env.Result.LastUpdated)

	got := getCoupon(t, app, 3)
	require.NotNil(t, got)
	assert.Equal(t, "30OFF", got.Name)
	assert.Equal(t, 30, got.Percent)
	assert.True(t, got.IsActive)
}

func TestCouponAPI_DuplicateNameLeavesStoreUnchanged(t *testing.T) {
	app := setupSeededApp(t)
	before := listCoupons(t, app)

	resp, raw := doRequest(t, app, http.MethodPost, "/api/coupons", `{"name":"10off","percent":50}`)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{"Coupon name already exists"}, decode[any](t, raw).ErrorMessages)
	assert.Equal(t, before, listCoupons(t, app))
}

func TestCouponAPI_PercentBoundaries(t *testing.T) {
	app := setupSeededApp(t)

	for _, tc := range []struct {
		percent int
		ok      bool
	}{
		{0, false},
		{1, true},
		{100, true},
		{101, false},
	} {
		body := fmt.Sprintf(`{"name":"P%d","percent":%d}`, tc.percent, tc.percent)
		resp, _ := doRequest(t, app, http.MethodPost, "/api/coupons", body)
		if tc.ok {
			assert.Equal(t, fiber.StatusOK, resp.StatusCode, "percent %d", tc.percent)
		} else {
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "percent %d", tc.percent)
		}
	}

	assert.Len(t, listCoupons(t, app), 4)
}

func TestCouponAPI_UpdateKeepingOwnName(t *testing.T) {
	app := setupSeededApp(t)

	resp, raw := doRequest(t, app, http.MethodPut, "/api/coupons", `{"id":1,"name":"10OFF","percent":12,"isActive":false}`)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	env := decode[model.CouponDto](t, raw)
	require.True(t, env.IsSuccess)
	assert.Equal(t, 1, env.Result.ID)
	assert.Equal(t, seededAt, env.Result.Created)
	assert.True(t, env.Result.LastUpdated.After(seededAt))

	got := getCoupon(t, app, 1)
	require.NotNil(t, got)
	assert.Equal(t, 12, got.Percent)
	assert.False(t, got.IsActive)
	assert.Equal(t, seededAt, got.Created)
}

func TestCouponAPI_UpdateToNameOfAnotherCoupon(t *testing.T) {
	app := setupSeededApp(t)

	resp, raw := doRequest(t, app, http.MethodPut, "/api/coupons", `{"id":1,"name":"20off","percent":10}`)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{"Coupon name or coupon id already exists"}, decode[any](t, raw).ErrorMessages)
	assert.Equal(t, "10OFF", getCoupon(t, app, 1).Name)
}

func TestCouponAPI_UpdateMissingCoupon(t *testing.T) {
	app := setupSeededApp(t)

	resp, raw := doRequest(t, app, http.MethodPut, "/api/coupons", `{"id":99,"name":"NEW","percent":10}`)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, []string{"Coupon not found"}, decode[any](t, raw).ErrorMessages)
	assert.Len(t, listCoupons(t, app), 2)
}

func TestCouponAPI_Delete(t *testing.T) {
	app := setupSeededApp(t)

	resp, raw := doRequest(t, app, http.MethodDelete, "/api/coupons/2", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	env := decode[any](t, raw)
	assert.True(t, env.IsSuccess)
	assert.Equal(t, fiber.StatusNoContent, env.StatusCode)

	assert.Nil(t, getCoupon(t, app, 2))

	before := listCoupons(t, app)
	resp, raw = doRequest(t, app, http.MethodDelete, "/api/coupons/2", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{"Invalid id"}, decode[any](t, raw).ErrorMessages)
	assert.Equal(t, before, listCoupons(t, app))
}

func TestCouponAPI_ListIsStable(t *testing.T) {
	app := setupSeededApp(t)

	first := listCoupons(t, app)
	second := listCoupons(t, app)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, first[0].ID)
	assert.Equal(t, 2, first[1].ID)
}

func TestCouponAPI_ConcurrentCreatesWithSameName(t *testing.T) {
	app := setupSeededApp(t)

	const workers = 10
	var wg sync.WaitGroup
	statuses := make(chan int, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/coupons", strings.NewReader(`{"name":"FLASH","percent":40}`))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				statuses <- 0
				return
			}
			_ = resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	var created, rejected int
	for status := range statuses {
		switch status {
		case fiber.StatusOK:
			created++
		case fiber.StatusBadRequest:
			rejected++
		}
	}

	assert.Equal(t, 1, created, "exactly one create should win")
	assert.Equal(t, workers-1, rejected)

	coupons := listCoupons(t, app)
	require.Len(t, coupons, 3)
	assert.Equal(t, 3, coupons[2].ID)
}
