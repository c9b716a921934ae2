package handler_test

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

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/trip-planner/internal/auth"
	"github.com/sakif/trip-planner/internal/handler"
	"github.com/sakif/trip-planner/internal/model"
	sqliteRepo "github.com/sakif/trip-planner/internal/repository/sqlite"
	"github.com/sakif/trip-planner/internal/service"
	"github.com/sakif/trip-planner/internal/weather"
)

// testUserHeader stands in for the session cookie: the harness router copies
// it into the request context the way auth.RequireAuth would.
const testUserHeader = "X-Test-User"

// downProvider simulates an unreachable weather API.
type downProvider struct{}

func (downProvider) Current(context.Context, string) (*model.Weather, error) {
	return nil, errors.New("connection refused")
}

func (downProvider) Forecast(context.Context, string) ([]weather.Entry, error) {
	return nil, errors.New("connection refused")
}

type harness struct {
	db     *sqliteRepo.DB
	router chi.Router
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-key", time.Hour)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	authHandler := handler.NewAuthHandler(service.NewAuthService(db, tokens, passwords, logger), tokens, nil, false, logger)
	tripHandler := handler.NewTripHandler(service.NewTripService(db, db, logger), service.NewSharingService(db, db, db, logger), logger)
	scheduleHandler := handler.NewScheduleHandler(service.NewScheduleService(db, db, db, logger), logger)
	weatherHandler := handler.NewWeatherHandler(service.NewWeatherService(db, db, downProvider{}, service.WeatherOptions{}, logger), logger)
	healthHandler := handler.NewHealthHandler(db, logger)

	r := chi.NewRouter()
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Post("/api/register", authHandler.HandleRegister)
	r.Post("/api/login", authHandler.HandleLogin)
	r.Post("/api/logout", authHandler.HandleLogout)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if id := req.Header.Get(testUserHeader); id != "" {
					req = req.WithContext(auth.WithUserID(req.Context(), id))
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Get("/api/user", authHandler.HandleMe)
		r.Patch("/api/user", authHandler.HandleUpdateMe)
		r.Get("/api/trips", tripHandler.HandleList)
		r.Post("/api/trips", tripHandler.HandleCreate)
		r.Get("/api/trips/{id}", tripHandler.HandleGet)
		r.Patch("/api/trips/{id}", tripHandler.HandleUpdate)
		r.Delete("/api/trips/{id}", tripHandler.HandleDelete)
		r.Post("/api/trips/{id}/share", tripHandler.HandleShare)
		r.Get("/api/trips/{id}/schedules", scheduleHandler.HandleListByTrip)
		r.Post("/api/trips/{id}/schedules", scheduleHandler.HandleCreate)
		r.Get("/api/weather/next-trip", weatherHandler.HandleNextTrip)
		r.Get("/api/weather/{location}", weatherHandler.HandleCurrent)
		r.Get("/api/weather/forecast/{location}", weatherHandler.HandleForecast)
	})

	return &harness{db: db, router: r}
}

func (h *harness) user(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", Name: username}
	require.NoError(t, h.db.CreateUser(context.Background(), u))
	return u
}

func (h *harness) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(testUserHeader, userID)
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func (h *harness) createTrip(t *testing.T, owner *model.User) model.Trip {
	t.Helper()
	rr := h.do(t, http.MethodPost, "/api/trips", owner.ID,
		`{"name":"Paris","destination":"Paris","startDate":"2099-06-01","endDate":"2099-06-07"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var trip model.Trip
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&trip))
	return trip
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_RegisterLoginLogout(t *testing.T) {
	h := newHarness(t)

	t.Run("register sets session cookie", func(t *testing.T) {
		rr := h.do(t, http.MethodPost, "/api/register", "",
			`{"username":"alice","password":"correct horse","email":"alice@example.com","name":"Alice"}`)

		assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		cookie := sessionCookie(rr)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		assert.NotEmpty(t, cookie.Value)
		assert.NotContains(t, rr.Body.String(), "correct horse")
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		rr := h.do(t, http.MethodPost, "/api/register", "",
			`{"username":"alice","password":"another pass","email":"other@example.com"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "conflict", decodeError(t, rr).Error)
	})

	t.Run("invalid registration lists fields", func(t *testing.T) {
		rr := h.do(t, http.MethodPost, "/api/register", "", `{"username":"al","password":"short","email":"nope"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeError(t, rr)
		assert.Equal(t, "validation_error", resp.Error)
		assert.GreaterOrEqual(t, len(resp.Fields), 3)
	})

	t.Run("login with correct password", func(t *testing.T) {
		rr := h.do(t, http.MethodPost, "/api/login", "", `{"username":"alice","password":"correct horse"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotNil(t, sessionCookie(rr))
	})

	t.Run("login with wrong password", func(t *testing.T) {
		rr := h.do(t, http.MethodPost, "/api/login", "", `{"username":"alice","password":"wrong horse"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "unauthenticated", decodeError(t, rr).Error)
		assert.Nil(t, sessionCookie(rr))
	})

	t.Run("logout expires cookie", func(t *testing.T) {
		rr := h.do(t, http.MethodPost, "/api/logout", "", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		cookie := sessionCookie(rr)
		require.NotNil(t, cookie)
		assert.Less(t, cookie.MaxAge, 0)
	})
}

func TestAuthHandler_Profile(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")

	rr := h.do(t, http.MethodGet, "/api/user", alice.ID, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = h.do(t, http.MethodPatch, "/api/user", alice.ID, `{"name":"Alice Liddell"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated model.User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, "Alice Liddell", updated.Name)

	rr = h.do(t, http.MethodPatch, "/api/user", alice.ID, `{"username":"mallory"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, http.MethodGet, "/api/user", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTripHandler_CRUD(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	trip := h.createTrip(t, alice)

	assert.Equal(t, alice.ID, trip.OwnerUserID)
	assert.False(t, trip.IsShared)

	t.Run("get", func(t *testing.T) {
		rr := h.do(t, http.MethodGet, "/api/trips/"+trip.ID, alice.ID, "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("list", func(t *testing.T) {
		rr := h.do(t, http.MethodGet, "/api/trips", alice.ID, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var trips []model.Trip
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&trips))
		assert.Len(t, trips, 1)
	})

	t.Run("patch", func(t *testing.T) {
		rr := h.do(t, http.MethodPatch, "/api/trips/"+trip.ID, alice.ID, `{"name":"Paris in June"}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var got model.Trip
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, "Paris in June", got.Name)
		assert.Equal(t, "Paris", got.Destination)
	})

	t.Run("patch rejects unknown fields", func(t *testing.T) {
		rr := h.do(t, http.MethodPatch, "/api/trips/"+trip.ID, alice.ID, `{"userId":"someone-else"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid_request", decodeError(t, rr).Error)
	})

	t.Run("patch with end before start", func(t *testing.T) {
		rr := h.do(t, http.MethodPatch, "/api/trips/"+trip.ID, alice.ID, `{"endDate":"2099-05-01"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decodeError(t, rr).Error)
	})

	t.Run("delete", func(t *testing.T) {
		rr := h.do(t, http.MethodDelete, "/api/trips/"+trip.ID, alice.ID, "")
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = h.do(t, http.MethodGet, "/api/trips/"+trip.ID, alice.ID, "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTripHandler_CreateValidation(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")

	rr := h.do(t, http.MethodPost, "/api/trips", alice.ID, `{"name":"","destination":"","startDate":"2099-06-07","endDate":"2099-06-01"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, "validation_error", resp.Error)
	fields := map[string]bool{}
	for _, f := range resp.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["destination"])
	assert.True(t, fields["endDate"])
}

func TestTripHandler_AccessAndSharing(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	trip := h.createTrip(t, alice)

	rr := h.do(t, http.MethodGet, "/api/trips/"+trip.ID, bob.ID, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = h.do(t, http.MethodGet, "/api/trips/does-not-exist", bob.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = h.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/share", bob.ID, `{"username":"alice"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code, "non-owner cannot share")

	rr = h.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/share", alice.ID, `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rr).Error)

	rr = h.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/share", alice.ID, `{"username":"nobody"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = h.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/share", alice.ID, `{"username":"bob","role":"owner"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/share", alice.ID, `{"username":"bob"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var member model.TripMember
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&member))
	assert.Equal(t, model.RoleViewer, member.Role)

	rr = h.do(t, http.MethodGet, "/api/trips/"+trip.ID, bob.ID, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = h.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/schedules", bob.ID, `{"day":"2099-06-02","title":"Louvre"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code, "viewer cannot write")

	rr = h.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/share", alice.ID, `{"username":"bob","role":"editor"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestWeatherHandler(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")

	t.Run("upstream down serves placeholder", func(t *testing.T) {
		rr := h.do(t, http.MethodGet, "/api/weather/Paris", alice.ID, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var w model.Weather
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&w))
		assert.True(t, w.Placeholder)
		assert.Equal(t, "Unknown", w.Condition)
		assert.Equal(t, "Paris", w.Location)
	})

	t.Run("forecast failure is an empty list", func(t *testing.T) {
		rr := h.do(t, http.MethodGet, "/api/weather/forecast/Paris", alice.ID, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("no upcoming trip", func(t *testing.T) {
		rr := h.do(t, http.MethodGet, "/api/weather/next-trip", alice.ID, "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "no_upcoming_trip", decodeError(t, rr).Error)
	})

	t.Run("next trip", func(t *testing.T) {
		trip := h.createTrip(t, alice)
		rr := h.do(t, http.MethodGet, "/api/weather/next-trip", alice.ID, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var got service.NextTripWeather
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, trip.ID, got.Trip.ID)
		assert.Equal(t, "Paris", got.Weather.Location)
	})
}

func TestHealthHandler(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	require.NoError(t, h.db.Close())
	rr = h.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
