package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/brickmart/booking-api/internal/handler"
	availabilityHandler "github.com/brickmart/booking-api/internal/handler/availability"
	bookingHandler "github.com/brickmart/booking-api/internal/handler/booking"
	templateHandler "github.com/brickmart/booking-api/internal/handler/template"
	"github.com/brickmart/booking-api/internal/middleware"
	"github.com/brickmart/booking-api/internal/model"
	"github.com/brickmart/booking-api/internal/notifier"
	"github.com/brickmart/booking-api/internal/router"
	availabilityService "github.com/brickmart/booking-api/internal/service/availability"
	bookingService "github.com/brickmart/booking-api/internal/service/booking"
	templateService "github.com/brickmart/booking-api/internal/service/template"
	apperrors "github.com/brickmart/booking-api/pkg/errors"
	"github.com/brickmart/booking-api/pkg/logger"
	"github.com/brickmart/booking-api/pkg/metrics"
)

const testJWTSecret = "api-test-secret"

var testMetrics = metrics.NewMetrics("api_test")

// memTemplateStore is an in-memory slot template repository.
type memTemplateStore struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*model.SlotTemplate
}

func newMemTemplateStore() *memTemplateStore {
	return &memTemplateStore{templates: make(map[uuid.UUID]*model.SlotTemplate)}
}

func (s *memTemplateStore) Create(ctx context.Context, tpl *model.SlotTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl.ID = uuid.New()
	tpl.Active = true
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = time.Now()
	stored := *tpl
	s.templates[tpl.ID] = &stored
	return nil
}

func (s *memTemplateStore) Get(ctx context.Context, id uuid.UUID) (*model.SlotTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.templates[id]
	if !ok {
		return nil, apperrors.NewNotFound("slot template", nil)
	}
	copied := *tpl
	return &copied, nil
}

func (s *memTemplateStore) Update(ctx context.Context, tpl *model.SlotTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[tpl.ID]; !ok {
		return apperrors.NewNotFound("slot template", nil)
	}
	stored := *tpl
	s.templates[tpl.ID] = &stored
	return nil
}

func (s *memTemplateStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.templates[id]
	if !ok {
		return apperrors.NewNotFound("slot template", nil)
	}
	tpl.Active = false
	return nil
}

func (s *memTemplateStore) List(ctx context.Context) ([]*model.SlotTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.SlotTemplate
	for _, tpl := range s.templates {
		copied := *tpl
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memTemplateStore) ListActiveForDayOfWeek(ctx context.Context, dayOfWeek int) ([]*model.SlotTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.SlotTemplate
	for _, tpl := range s.templates {
		if tpl.DayOfWeek == dayOfWeek && tpl.Active {
			copied := *tpl
			out = append(out, &copied)
		}
	}
	return out, nil
}

// memLedger is an in-memory booking ledger with the same capacity
// semantics as the serializable postgres transaction.
type memLedger struct {
	mu       sync.Mutex
	bookings []*model.Booking
}

func (l *memLedger) CountOccupying(ctx context.Context, date time.Time, timeOfDay string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.countLocked(date, timeOfDay), nil
}

func (l *memLedger) countLocked(date time.Time, timeOfDay string) int {
	count := 0
	for _, b := range l.bookings {
		if b.SlotDate.Equal(date) && b.SlotTime == timeOfDay && b.Status.Occupies() {
			count++
		}
	}
	return count
}

func (l *memLedger) InsertWithCapacity(ctx context.Context, booking *model.Booking, capacity int, event *model.OutboxEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.bookings {
		if b.HumanID == booking.HumanID {
			return apperrors.NewConflict("booking already exists", nil)
		}
	}
	if l.countLocked(booking.SlotDate, booking.SlotTime) >= capacity {
		return apperrors.NewSlotFull(booking.SlotDate.Format(model.DateFormat), booking.SlotTime)
	}
	stored := *booking
	l.bookings = append(l.bookings, &stored)
	return nil
}

func (l *memLedger) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.bookings {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("booking", nil)
}

func (l *memLedger) GetByHumanID(ctx context.Context, humanID string) (*model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.bookings {
		if b.HumanID == humanID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("booking", nil)
}

func (l *memLedger) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*model.Booking
	for _, b := range l.bookings {
		if filters != nil && filters.Date != nil && !b.SlotDate.Equal(*filters.Date) {
			continue
		}
		if filters != nil && filters.Status != nil && b.Status != *filters.Status {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (l *memLedger) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, event *model.OutboxEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.bookings {
		if b.ID == id {
			if b.Status != from {
				return apperrors.NewConflict("booking status changed concurrently", nil)
			}
			b.Status = to
			return nil
		}
	}
	return apperrors.NewNotFound("booking", nil)
}

// newTestServer wires the full HTTP stack against in-memory stores.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	templates := newMemTemplateStore()
	ledger := &memLedger{}

	log := logger.NewLogger(nil)
	changeNotifier := notifier.NewNotifier(nil, log)

	availabilitySvc := availabilityService.NewService(templates, ledger, time.Minute, testMetrics)
	changeNotifier.Register(availabilitySvc)

	bookingSvc := bookingService.NewService(ledger, templates, changeNotifier, testMetrics)
	templateSvc := templateService.NewService(templates)

	r := router.NewRouter(
		middleware.NewAuthMiddleware(testJWTSecret),
		availabilityHandler.NewHandler(availabilitySvc),
		bookingHandler.NewHandler(bookingSvc),
		templateHandler.NewHandler(templateSvc),
		handler.NewHandler(nil),
		router.RouterConfig{
			RateLimit:     rate.Inf,
			RateBurst:     1,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "api_test_http",
		},
	)
	r.Setup()

	srv := httptest.NewServer(r.Engine())
	t.Cleanup(srv.Close)
	return srv
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "test-admin",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

type apiResponse struct {
	Success bool                   `json:"success"`
	Data    json.RawMessage        `json:"data"`
	Error   map[string]interface{} `json:"error"`
}

func (r apiResponse) errorCode() string {
	if r.Error == nil {
		return ""
	}
	code, _ := r.Error["code"].(string)
	return code
}

func makeRequest(t *testing.T, srv *httptest.Server, method, path string, body interface{}, token string) (int, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, srv.URL+"/api/v1"+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func decodeData(t *testing.T, resp apiResponse, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, target))
}
