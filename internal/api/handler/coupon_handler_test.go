package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/coupon"
)

type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Claim(ctx context.Context, userID, couponID uuid.UUID) (*coupon.UserCoupon, error) {
	args := m.Called(ctx, userID, couponID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.UserCoupon), args.Error(1)
}

func (m *MockCouponService) ListActive(ctx context.Context) ([]*coupon.Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*coupon.Coupon), args.Error(1)
}

func (m *MockCouponService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*coupon.UserCoupon, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*coupon.UserCoupon), args.Error(1)
}

func (m *MockCouponService) Create(ctx context.Context, name string, couponType coupon.Type, value, minSpend decimal.Decimal, totalQuantity int64, startTime, endTime time.Time) (*coupon.Coupon, error) {
	args := m.Called(ctx, name, couponType, value, minSpend, totalQuantity, startTime, endTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Coupon), args.Error(1)
}

func TestCouponHandler_Claim(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	userID := uuid.New()
	couponID := uuid.New()

	makeRequest := func(handler *CouponHandler, couponIDStr string) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.POST("/coupons/:id/claims", handler.Claim)
		body, _ := json.Marshal(ClaimRequest{UserID: userID.String()})
		req, _ := http.NewRequest(http.MethodPost, "/coupons/"+couponIDStr+"/claims", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		claim := &coupon.UserCoupon{
			ID:         uuid.New(),
			UserID:     userID,
			CouponID:   couponID,
			Status:     coupon.ClaimStatusUnused,
			ObtainedAt: time.Now(),
			ExpiresAt:  time.Now().Add(24 * time.Hour),
		}
		mockService.On("Claim", mock.Anything, userID, couponID).Return(claim, nil)

		rr := makeRequest(handler, couponID.String())

		assert.Equal(t, http.StatusCreated, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		require.NotNil(t, topLevelResponse.Data)

		var responseBody ClaimResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))
		assert.Equal(t, claim.ID.String(), responseBody.ClaimID)
		assert.Equal(t, string(coupon.ClaimStatusUnused), responseBody.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("OutOfStock", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		mockService.On("Claim", mock.Anything, userID, couponID).Return(nil, coupon.ErrOutOfStock{CouponID: couponID})

		rr := makeRequest(handler, couponID.String())

		assert.Equal(t, http.StatusConflict, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		require.NotNil(t, topLevelResponse.Error)
		assert.Equal(t, "OUT_OF_STOCK", topLevelResponse.Error.Code)

		mockService.AssertExpectations(t)
	})

	t.Run("Inactive", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		mockService.On("Claim", mock.Anything, userID, couponID).Return(nil, coupon.ErrCouponInactive{CouponID: couponID})

		rr := makeRequest(handler, couponID.String())

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		require.NotNil(t, topLevelResponse.Error)
		assert.Equal(t, "COUPON_INACTIVE", topLevelResponse.Error.Code)

		mockService.AssertExpectations(t)
	})

	t.Run("CouponNotFound", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		mockService.On("Claim", mock.Anything, userID, couponID).Return(nil, coupon.ErrCouponNotFound{CouponID: couponID})

		rr := makeRequest(handler, couponID.String())

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		mockService.On("Claim", mock.Anything, userID, couponID).Return(nil, account.ErrAccountNotFound{UserID: userID})

		rr := makeRequest(handler, couponID.String())

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidCouponID", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		rr := makeRequest(handler, "not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Claim")
	})
}

func TestCouponHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		end := start.Add(30 * 24 * time.Hour)
		created, err := coupon.NewCoupon("Autumn Sale", coupon.TypeAmountOff, decimal.NewFromInt(10), decimal.NewFromInt(50), 100, start, end)
		require.NoError(t, err)

		mockService.On("Create", mock.Anything, "Autumn Sale", coupon.TypeAmountOff,
			decimal.NewFromInt(10), decimal.NewFromInt(50), int64(100), start, end).Return(created, nil)

		router := setupTestRouter()
		router.POST("/coupons", handler.Create)

		body, _ := json.Marshal(CreateCouponRequest{
			Name:          "Autumn Sale",
			Type:          "amount_off",
			Value:         "10",
			MinSpend:      "50",
			TotalQuantity: 100,
			StartTime:     start.Format(time.RFC3339),
			EndTime:       end.Format(time.RFC3339),
		})
		req, _ := http.NewRequest(http.MethodPost, "/coupons", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))

		var responseBody CouponResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))
		assert.Equal(t, int64(100), responseBody.RemainingQuantity)
		assert.True(t, responseBody.IsActive)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidWindow", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		mockService.On("Create", mock.Anything, "Broken", coupon.TypeDiscount,
			mock.Anything, mock.Anything, int64(10), start, start).Return(nil, coupon.ErrInvalidWindow)

		router := setupTestRouter()
		router.POST("/coupons", handler.Create)

		body, _ := json.Marshal(CreateCouponRequest{
			Name:          "Broken",
			Type:          "discount",
			Value:         "0.1",
			TotalQuantity: 10,
			StartTime:     start.Format(time.RFC3339),
			EndTime:       start.Format(time.RFC3339),
		})
		req, _ := http.NewRequest(http.MethodPost, "/coupons", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidValue", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/coupons", handler.Create)

		body, _ := json.Marshal(CreateCouponRequest{
			Name:          "Bad value",
			Type:          "discount",
			Value:         "ten",
			TotalQuantity: 10,
			StartTime:     time.Now().Format(time.RFC3339),
			EndTime:       time.Now().Add(time.Hour).Format(time.RFC3339),
		})
		req, _ := http.NewRequest(http.MethodPost, "/coupons", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Create")
	})
}

func TestCouponHandler_ListActive(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		start := time.Now().Add(-time.Hour)
		end := time.Now().Add(time.Hour)
		cp, err := coupon.NewCoupon("Flash", coupon.TypeDiscount, decimal.NewFromFloat(0.2), decimal.Zero, 5, start, end)
		require.NoError(t, err)
		mockService.On("ListActive", mock.Anything).Return([]*coupon.Coupon{cp}, nil)

		router := setupTestRouter()
		router.GET("/coupons", handler.ListActive)

		req, _ := http.NewRequest(http.MethodGet, "/coupons", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		mockService.On("ListActive", mock.Anything).Return(nil, errors.New("db down"))

		router := setupTestRouter()
		router.GET("/coupons", handler.ListActive)

		req, _ := http.NewRequest(http.MethodGet, "/coupons", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestCouponHandler_ListByUser(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		claims := []*coupon.UserCoupon{
			{ID: uuid.New(), UserID: userID, CouponID: uuid.New(), Status: coupon.ClaimStatusUnused, ObtainedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)},
		}
		mockService.On("ListByUser", mock.Anything, userID).Return(claims, nil)

		router := setupTestRouter()
		router.GET("/users/:id/coupons", handler.ListByUser)

		req, _ := http.NewRequest(http.MethodGet, "/users/"+userID.String()+"/coupons", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		mockService := new(MockCouponService)
		handler := NewCouponHandler(logger, mockService)

		mockService.On("ListByUser", mock.Anything, userID).Return(nil, account.ErrAccountNotFound{UserID: userID})

		router := setupTestRouter()
		router.GET("/users/:id/coupons", handler.ListByUser)

		req, _ := http.NewRequest(http.MethodGet, "/users/"+userID.String()+"/coupons", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}
