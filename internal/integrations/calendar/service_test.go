package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/pkg/logger"
	"github.com/mark-szabo/carwash/pkg/ptr"
)

var cet = time.FixedZone("CET", 3600)

func testReservation() *domain.Reservation {
	start := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)
	return &domain.Reservation{
		ID:                 7,
		VehiclePlateNumber: "ABC123",
		Services:           []domain.ServiceType{domain.ServiceExterior, domain.ServiceSpotCleaning},
		StartDate:          start,
		EndDate:            &end,
	}
}

// fakeAPI минимальный Calendar API: insert/patch/delete событий
type fakeAPI struct {
	requests []string
	status   int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"%s"}}`, f.status, http.StatusText(f.status))
		return
	}
	if r.Method == http.MethodDelete {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	var event gcal.Event
	_ = json.NewDecoder(r.Body).Decode(&event)
	event.Id = "evt-1"
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(event)
}

func newTestService(t *testing.T, api *fakeAPI) (*Service, *[]string) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	var owners []string
	factory := func(ctx context.Context, ownerEmail string) (*gcal.Service, error) {
		owners = append(owners, ownerEmail)
		return gcal.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	}
	return newService(factory, cet, logger.NewWithWriter(io.Discard, "error")), &owners
}

func TestBuildEvent(t *testing.T) {
	s := newService(nil, cet, logger.NewWithWriter(io.Discard, "error"))

	event := s.buildEvent(testReservation())

	assert.Equal(t, "2024-01-10T08:00:00+01:00", event.Start.DateTime)
	assert.Equal(t, "2024-01-10T11:00:00+01:00", event.End.DateTime)
	assert.Equal(t, "ABC123: exterior, spot cleaning", event.Description)
}

func TestService_CreateUpdateDelete(t *testing.T) {
	api := &fakeAPI{}
	s, owners := newTestService(t, api)
	ctx := context.Background()
	owner := &domain.User{ID: "u1", Email: "u1@example.com"}
	r := testReservation()

	id, err := s.CreateEvent(ctx, r, owner)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "evt-1", *id)

	r.CalendarEventID = id
	_, err = s.UpdateEvent(ctx, r, owner)
	require.NoError(t, err)

	require.NoError(t, s.DeleteEvent(ctx, r, owner))

	require.Len(t, api.requests, 3)
	assert.True(t, strings.HasPrefix(api.requests[0], "POST "))
	assert.True(t, strings.HasPrefix(api.requests[1], "PATCH "))
	assert.True(t, strings.HasPrefix(api.requests[2], "DELETE "))
	assert.Equal(t, []string{"u1@example.com", "u1@example.com", "u1@example.com"}, *owners)
}

func TestService_DeleteWithoutEvent(t *testing.T) {
	api := &fakeAPI{}
	s, _ := newTestService(t, api)

	require.NoError(t, s.DeleteEvent(context.Background(), testReservation(), &domain.User{}))
	assert.Empty(t, api.requests)
}

func TestService_DeleteMissingEventIsNotAnError(t *testing.T) {
	api := &fakeAPI{status: http.StatusNotFound}
	s, _ := newTestService(t, api)
	r := testReservation()
	r.CalendarEventID = ptr.Ptr("gone")

	assert.NoError(t, s.DeleteEvent(context.Background(), r, &domain.User{Email: "u1@example.com"}))
}

func TestService_CreateFailure(t *testing.T) {
	api := &fakeAPI{status: http.StatusForbidden}
	s, _ := newTestService(t, api)

	_, err := s.CreateEvent(context.Background(), testReservation(), &domain.User{Email: "u1@example.com"})
	assert.ErrorIs(t, err, ErrRequest)
}
