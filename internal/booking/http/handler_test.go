package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/pagination"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/response"
)

type stubService struct {
	bookings   map[string]*booking.Booking
	lastFilter booking.Filter
	lastActor  auth.Actor
}

func (s *stubService) Create(_ context.Context, req booking.CreateRequest, actor auth.Actor) (*booking.Booking, error) {
	s.lastActor = actor
	start, err := booking.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := booking.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	b := &booking.Booking{
		ID:               uuid.NewString(),
		UserID:           actor.ID,
		RoomID:           req.RoomID,
		StartDate:        start,
		EndDate:          end,
		Guests:           req.Guests,
		Status:           booking.StatusConfirmed,
		TotalPrice:       300,
		BookingReference: "BK1707955200000ABCDE",
	}
	s.bookings[b.ID] = b
	return b, nil
}

func (s *stubService) Cancel(ctx context.Context, id string, actor auth.Actor) (*booking.Booking, error) {
	b, err := s.GetByID(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if b.Status == booking.StatusCancelled {
		return nil, booking.ErrAlreadyCancelled
	}
	b.Status = booking.StatusCancelled
	return b, nil
}

func (s *stubService) List(_ context.Context, filter booking.Filter, actor auth.Actor) ([]*booking.Booking, pagination.Info, error) {
	s.lastFilter = filter
	s.lastActor = actor
	var out []*booking.Booking
	for _, b := range s.bookings {
		out = append(out, b)
	}
	return out, pagination.NewInfo(filter.Params, len(out)), nil
}

func (s *stubService) GetByID(_ context.Context, id string, actor auth.Actor) (*booking.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	if err := auth.Authorize(actor, b.UserID, ""); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *stubService) CompleteFinished(context.Context) (int, error) { return 0, nil }

type testEnv struct {
	router *gin.Engine
	svc    *stubService
	jwt    *auth.JWTManager
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		svc: &stubService{bookings: map[string]*booking.Booking{}},
		jwt: auth.NewJWTManager("secret", time.Minute),
	}
	env.router = gin.New()
	RegisterRoutes(env.router.Group("/v1"), NewHandler(env.svc), auth.AuthRequired(env.jwt))
	return env
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := e.jwt.GenerateAccessToken(userID, auth.RoleUser)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

const (
	guestID = "0b6c1f37-8f0a-4a53-9d55-3f4a2f1f7a10"
	otherID = "5d2f4c58-63d6-4d8b-8f57-8b6f0f2b9c21"
	roomID  = "9a7e7b1e-2d5c-4a0e-a3f1-6c2b1d4e5f60"
)

func TestCreateBooking(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/v1/bookings", guestID, gin.H{
		"room_id":    roomID,
		"start_date": "2024-02-15",
		"end_date":   "2024-02-18",
		"guests":     2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, guestID, resp.User.ID)
	assert.Equal(t, roomID, resp.Room.ID)
	assert.Equal(t, 3, resp.Nights)
	assert.Equal(t, 300.0, resp.TotalPrice)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, auth.RoleUser, env.svc.lastActor.Role)
}

func TestCreateBookingRejectsBadInput(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/v1/bookings", "", gin.H{"room_id": roomID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/v1/bookings", guestID, gin.H{"room_id": "room-1", "start_date": "2024-02-15", "end_date": "2024-02-18", "guests": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/bookings", guestID, gin.H{"room_id": roomID, "start_date": "2024-02-15", "end_date": "2024-02-18"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "guests is required")

	w = env.do(t, http.MethodPost, "/v1/bookings", guestID, gin.H{"room_id": roomID, "start_date": "soon", "end_date": "2024-02-18", "guests": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "validation", errResp.Kind)
}

func TestGetAndCancelBooking(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/v1/bookings", guestID, gin.H{"room_id": roomID, "start_date": "2024-02-15", "end_date": "2024-02-18", "guests": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	var created BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodGet, "/v1/bookings/"+created.ID, guestID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/bookings/"+created.ID, otherID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/v1/bookings/"+uuid.NewString(), guestID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/v1/bookings/not-a-uuid", guestID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/v1/bookings/"+created.ID+"/cancel", guestID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cancelled BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
	assert.Equal(t, "cancelled", cancelled.Status)

	w = env.do(t, http.MethodPut, "/v1/bookings/"+created.ID+"/cancel", guestID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListBookings(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodGet, "/v1/bookings?page=2&limit=5&status=cancelled&user_id="+otherID, guestID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page response.PageResponse[BookingResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.NotNil(t, page.Items)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, booking.StatusCancelled, env.svc.lastFilter.Status)
	assert.Equal(t, otherID, env.svc.lastFilter.UserID, "scoping is the service's job")
	assert.Equal(t, guestID, env.svc.lastActor.ID)

	w = env.do(t, http.MethodGet, "/v1/bookings?status=pending", guestID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/bookings?limit=500", guestID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/bookings?page=1844674407370955161&limit=10", guestID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "huge pages are rejected before reaching the store")
}
