package models

import (
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/internal/service/capacity"
)

// Request модели

// ConfirmDropoffRequest ключи оставлены, машина стоит в location
type ConfirmDropoffRequest struct {
	Location string `json:"location"`
}

// SetStateRequest принудительная смена состояния
type SetStateRequest struct {
	State string `json:"state"`
}

// AddCommentRequest новый комментарий
type AddCommentRequest struct {
	Message string `json:"message"`
}

// Response модели

// CommentResponse комментарий к бронированию
type CommentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID                 int64             `json:"id"`
	UserID             string            `json:"userId"`
	CreatedByID        string            `json:"createdById"`
	VehiclePlateNumber string            `json:"vehiclePlateNumber"`
	Services           []string          `json:"services"`
	StartDate          time.Time         `json:"startDate"`
	EndDate            *time.Time        `json:"endDate,omitempty"`
	TimeRequirement    int               `json:"timeRequirement"`
	State              string            `json:"state"`
	Private            bool              `json:"private"`
	Mpv                bool              `json:"mpv"`
	Location           *string           `json:"location,omitempty"`
	Comments           []CommentResponse `json:"comments"`
	KeyLockerBoxID     *string           `json:"keyLockerBoxId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// MpvResponse признак минивэна для номера
type MpvResponse struct {
	VehiclePlateNumber string `json:"vehiclePlateNumber"`
	Mpv                bool   `json:"mpv"`
}

// SlotUsageResponse занятость слота
type SlotUsageResponse struct {
	StartTime       string    `json:"startTime"` // "08:00"
	EndTime         string    `json:"endTime"`
	Start           time.Time `json:"start"`
	CapacityMinutes int       `json:"capacityMinutes"`
	ReservedMinutes int       `json:"reservedMinutes"`
	FreeMinutes     int       `json:"freeMinutes"`
}

// CapacityResponse занятость дня
type CapacityResponse struct {
	Date                  string              `json:"date"` // "2024-01-10"
	Slots                 []SlotUsageResponse `json:"slots"`
	CapacityMinutes       int                 `json:"capacityMinutes"`
	ReservedMinutes       int                 `json:"reservedMinutes"`
	RemainingTodayMinutes *int                `json:"remainingSlotCapacityToday,omitempty"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	services := make([]string, 0, len(r.Services))
	for _, s := range r.Services {
		services = append(services, string(s))
	}

	comments := make([]CommentResponse, 0, len(r.Comments))
	for _, c := range r.Comments {
		comments = append(comments, CommentResponse{
			ID:        c.ID,
			UserID:    c.UserID,
			Role:      string(c.Role),
			Timestamp: c.Timestamp,
			Message:   c.Message,
		})
	}

	return &ReservationResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		CreatedByID:        r.CreatedByID,
		VehiclePlateNumber: r.VehiclePlateNumber,
		Services:           services,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		TimeRequirement:    r.TimeRequirement,
		State:              string(r.State),
		Private:            r.Private,
		Mpv:                r.Mpv,
		Location:           r.Location,
		Comments:           comments,
		KeyLockerBoxID:     r.KeyLockerBoxID,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(list []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(list)),
	}
	for _, r := range list {
		resp.Reservations = append(resp.Reservations, *FromDomainReservation(r))
	}
	return resp
}

// FromDaySummary конвертирует сводку дня в DTO
func FromDaySummary(s *capacity.DaySummary) *CapacityResponse {
	resp := &CapacityResponse{
		Date:                  s.Date.Format(domain.DateFormat),
		Slots:                 make([]SlotUsageResponse, 0, len(s.Slots)),
		CapacityMinutes:       s.CapacityMinutes,
		ReservedMinutes:       s.ReservedMinutes,
		RemainingTodayMinutes: s.RemainingTodayMinutes,
	}
	for _, slot := range s.Slots {
		resp.Slots = append(resp.Slots, SlotUsageResponse{
			StartTime:       slot.StartTime.String(),
			EndTime:         slot.EndTime.String(),
			Start:           slot.Start,
			CapacityMinutes: slot.CapacityMinutes,
			ReservedMinutes: slot.ReservedMinutes,
			FreeMinutes:     slot.FreeMinutes(),
		})
	}
	return resp
}
