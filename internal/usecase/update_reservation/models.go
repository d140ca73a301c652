package update_reservation

import (
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
)

// Request модель запроса на изменение бронирования (полная замена изменяемых полей)
type Request struct {
	ActorID            string
	ReservationID      int64
	VehiclePlateNumber string
	Services           []domain.ServiceType
	StartDate          time.Time
	EndDate            *time.Time // nil - берётся из календаря
	Private            bool
	Location           *string
}

// Response модель ответа с изменённым бронированием
type Response struct {
	ID                 int64
	UserID             string
	CreatedByID        string
	VehiclePlateNumber string
	Services           []domain.ServiceType
	StartDate          time.Time
	EndDate            time.Time
	TimeRequirement    int
	State              domain.State
	Private            bool
	Mpv                bool
	Location           *string
	Comments           []domain.Comment
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func toResponse(r *domain.Reservation) *Response {
	resp := &Response{
		ID:                 r.ID,
		UserID:             r.UserID,
		CreatedByID:        r.CreatedByID,
		VehiclePlateNumber: r.VehiclePlateNumber,
		Services:           r.Services,
		StartDate:          r.StartDate,
		TimeRequirement:    r.TimeRequirement,
		State:              r.State,
		Private:            r.Private,
		Mpv:                r.Mpv,
		Location:           r.Location,
		Comments:           r.Comments,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.EndDate != nil {
		resp.EndDate = *r.EndDate
	}
	return resp
}
