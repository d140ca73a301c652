package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mark-szabo/carwash/internal/domain"
)

const primaryCalendar = "primary"

// clientFactory строит клиент Calendar API от имени владельца календаря
type clientFactory func(ctx context.Context, ownerEmail string) (*gcal.Service, error)

// Service события в календаре владельца бронирования.
// Сервисный аккаунт с domain-wide delegation действует от имени пользователя (Subject = email).
type Service struct {
	newClient clientFactory
	location  *time.Location
	log       Logger
}

// NewFromCredentialsFile создает Service по JSON-ключу сервисного аккаунта
func NewFromCredentialsFile(path string, location *time.Location, log Logger) (*Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentials, err)
	}

	conf, err := google.JWTConfigFromJSON(data, gcal.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentials, err)
	}

	return newService(delegatedClient(conf), location, log), nil
}

func newService(factory clientFactory, location *time.Location, log Logger) *Service {
	return &Service{
		newClient: factory,
		location:  location,
		log:       log,
	}
}

func delegatedClient(conf *jwt.Config) clientFactory {
	return func(ctx context.Context, ownerEmail string) (*gcal.Service, error) {
		c := *conf
		c.Subject = ownerEmail
		return gcal.NewService(ctx, option.WithTokenSource(c.TokenSource(ctx)))
	}
}

// CreateEvent создает событие и возвращает его id
func (s *Service) CreateEvent(ctx context.Context, r *domain.Reservation, owner *domain.User) (*string, error) {
	client, err := s.newClient(ctx, owner.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}

	event, err := client.Events.Insert(primaryCalendar, s.buildEvent(r)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: insert: %v", ErrRequest, err)
	}

	s.log.Info("Calendar event created: reservation=%d, event=%s", r.ID, event.Id)
	return &event.Id, nil
}

// UpdateEvent переносит событие на новое время. Если события ещё нет или оно удалено
// пользователем, создается новое.
func (s *Service) UpdateEvent(ctx context.Context, r *domain.Reservation, owner *domain.User) (*string, error) {
	if r.CalendarEventID == nil || *r.CalendarEventID == "" {
		return s.CreateEvent(ctx, r, owner)
	}

	client, err := s.newClient(ctx, owner.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}

	event, err := client.Events.Patch(primaryCalendar, *r.CalendarEventID, s.buildEvent(r)).Context(ctx).Do()
	if err != nil {
		if isGone(err) {
			return s.CreateEvent(ctx, r, owner)
		}
		return nil, fmt.Errorf("%w: patch: %v", ErrRequest, err)
	}

	s.log.Info("Calendar event updated: reservation=%d, event=%s", r.ID, event.Id)
	return &event.Id, nil
}

// DeleteEvent удаляет событие; отсутствие события не ошибка
func (s *Service) DeleteEvent(ctx context.Context, r *domain.Reservation, owner *domain.User) error {
	if r.CalendarEventID == nil || *r.CalendarEventID == "" {
		return nil
	}

	client, err := s.newClient(ctx, owner.Email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}

	if err := client.Events.Delete(primaryCalendar, *r.CalendarEventID).Context(ctx).Do(); err != nil && !isGone(err) {
		return fmt.Errorf("%w: delete: %v", ErrRequest, err)
	}

	s.log.Info("Calendar event deleted: reservation=%d, event=%s", r.ID, *r.CalendarEventID)
	return nil
}

func (s *Service) buildEvent(r *domain.Reservation) *gcal.Event {
	end := r.StartDate
	if r.EndDate != nil {
		end = *r.EndDate
	}

	services := make([]string, 0, len(r.Services))
	for _, svc := range r.Services {
		services = append(services, strings.ReplaceAll(string(svc), "_", " "))
	}

	return &gcal.Event{
		Summary:     "🚗 Car wash",
		Description: fmt.Sprintf("%s: %s", r.VehiclePlateNumber, strings.Join(services, ", ")),
		Location:    "Carwash",
		Start: &gcal.EventDateTime{
			DateTime: r.StartDate.In(s.location).Format(time.RFC3339),
			TimeZone: s.location.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: end.In(s.location).Format(time.RFC3339),
			TimeZone: s.location.String(),
		},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
		},
		Transparency: "transparent",
	}
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}
