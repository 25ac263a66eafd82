package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/doorlab/roomkey-bookings/internal/domain"
	"github.com/doorlab/roomkey-bookings/internal/http/handlers"
	mw "github.com/doorlab/roomkey-bookings/internal/http/middleware"
	"github.com/doorlab/roomkey-bookings/pkg/auth"
)

const testSecret = "test-secret"

// stubBookingService implements service.BookingService with canned
// in-memory behavior so the handler tests exercise only the HTTP layer.
type stubBookingService struct {
	nextID   int64
	bookings map[int64]*domain.Booking
}

func newStubBookingService() *stubBookingService {
	return &stubBookingService{nextID: 1, bookings: make(map[int64]*domain.Booking)}
}

func (s *stubBookingService) Create(_ context.Context, userID int64, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	date, start, end, err := req.Validate()
	if err != nil {
		return nil, err
	}
	for _, b := range s.bookings {
		if b.RoomID == req.RoomID && b.Date == date && b.Status == domain.BookingActive &&
			domain.Overlaps(b.StartTime, b.EndTime, start, end) {
			return nil, domain.ErrConflict
		}
	}
	b := &domain.Booking{
		ID: s.nextID, UserID: userID, RoomID: req.RoomID,
		Date: date, StartTime: start, EndTime: end,
		AccessCode: "123456", Status: domain.BookingActive, CreatedAt: time.Now(),
	}
	s.nextID++
	s.bookings[b.ID] = b
	return b, nil
}

func (s *stubBookingService) ListAll(_ context.Context, _, _ int) ([]domain.BookingDetail, error) {
	ds := make([]domain.BookingDetail, 0, len(s.bookings))
	for _, b := range s.bookings {
		ds = append(ds, domain.BookingDetail{Booking: *b})
	}
	return ds, nil
}

func (s *stubBookingService) ListForRoomAndDate(_ context.Context, roomID int64, date domain.Date) ([]domain.BookingInterval, error) {
	var ivs []domain.BookingInterval
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.Date == date && b.Status == domain.BookingActive {
			ivs = append(ivs, domain.BookingInterval{StartTime: b.StartTime, EndTime: b.EndTime, Status: b.Status})
		}
	}
	return ivs, nil
}

func (s *stubBookingService) Cancel(_ context.Context, bookingID, userID int64) error {
	b, ok := s.bookings[bookingID]
	if !ok || b.UserID != userID || b.Status != domain.BookingActive {
		return domain.ErrNotFound
	}
	b.Status = domain.BookingCancelled
	return nil
}

func newBookingsRouter(svc *stubBookingService) chi.Router {
	h := handlers.NewBookingsHandler(svc)
	r := chi.NewRouter()
	r.Get("/bookings", h.ListAll)
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth(testSecret))
		r.Post("/bookings", h.Create)
		r.Delete("/bookings/{id}", h.Cancel)
	})
	return r
}

func bearerToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := auth.NewAccessToken(userID, "tester", testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + token
}

func doAuthJSON(t *testing.T, r chi.Router, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const validBookingBody = `{"room_id":3,"date":"2024-06-01","start_time":"10:00","end_time":"11:00"}`

func TestCreateBookingEndpoint(t *testing.T) {
	r := newBookingsRouter(newStubBookingService())
	token := bearerToken(t, 7)

	rec := doAuthJSON(t, r, http.MethodPost, "/bookings", token, validBookingBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var got domain.Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.UserID != 7 || got.RoomID != 3 || got.AccessCode == "" {
		t.Errorf("unexpected booking: %+v", got)
	}
}

func TestCreateBookingEndpointRequiresAuth(t *testing.T) {
	r := newBookingsRouter(newStubBookingService())

	if rec := doAuthJSON(t, r, http.MethodPost, "/bookings", "", validBookingBody); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}
	if rec := doAuthJSON(t, r, http.MethodPost, "/bookings", "Bearer garbage", validBookingBody); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", rec.Code)
	}
}

func TestCreateBookingEndpointErrors(t *testing.T) {
	r := newBookingsRouter(newStubBookingService())
	token := bearerToken(t, 7)

	if rec := doAuthJSON(t, r, http.MethodPost, "/bookings", token, `not json`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad body: status = %d, want 400", rec.Code)
	}

	invalid := `{"room_id":3,"date":"2024-06-01","start_time":"11:00","end_time":"10:00"}`
	if rec := doAuthJSON(t, r, http.MethodPost, "/bookings", token, invalid); rec.Code != http.StatusBadRequest {
		t.Fatalf("inverted slot: status = %d, want 400", rec.Code)
	}

	if rec := doAuthJSON(t, r, http.MethodPost, "/bookings", token, validBookingBody); rec.Code != http.StatusCreated {
		t.Fatalf("first create: status = %d", rec.Code)
	}
	rec := doAuthJSON(t, r, http.MethodPost, "/bookings", token, validBookingBody)
	if rec.Code != http.StatusConflict {
		t.Fatalf("double book: status = %d, want 409, body %s", rec.Code, rec.Body)
	}
	var got struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Code != "CONFLICT" {
		t.Errorf("code = %q", got.Code)
	}
}

func TestCancelBookingEndpoint(t *testing.T) {
	svc := newStubBookingService()
	r := newBookingsRouter(svc)
	owner := bearerToken(t, 7)
	other := bearerToken(t, 8)

	if rec := doAuthJSON(t, r, http.MethodPost, "/bookings", owner, validBookingBody); rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}

	// Another user cannot cancel it; ownership failures read as not found.
	if rec := doAuthJSON(t, r, http.MethodDelete, "/bookings/1", other, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("non-owner cancel: status = %d, want 404", rec.Code)
	}

	if rec := doAuthJSON(t, r, http.MethodDelete, "/bookings/1", owner, ""); rec.Code != http.StatusOK {
		t.Fatalf("owner cancel: status = %d", rec.Code)
	}
	if rec := doAuthJSON(t, r, http.MethodDelete, "/bookings/1", owner, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("double cancel: status = %d, want 404", rec.Code)
	}

	if rec := doAuthJSON(t, r, http.MethodDelete, "/bookings/abc", owner, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status = %d, want 400", rec.Code)
	}
}

func TestListBookingsEndpoint(t *testing.T) {
	svc := newStubBookingService()
	r := newBookingsRouter(svc)

	if _, err := svc.Create(context.Background(), 7, &domain.CreateBookingRequest{
		RoomID: 3, Date: "2024-06-01", StartTime: "10:00", EndTime: "11:00",
	}); err != nil {
		t.Fatal(err)
	}

	rec := doAuthJSON(t, r, http.MethodGet, "/bookings", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got []domain.BookingDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].RoomID != 3 {
		t.Errorf("unexpected listing: %+v", got)
	}
}
