package update_reservation

import (
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/internal/service/reservations/models"
	updateReservation "github.com/mark-szabo/carwash/internal/usecase/update_reservation"
)

// UpdateReservationRequest HTTP request model; заменяет все изменяемые поля
type UpdateReservationRequest struct {
	VehiclePlateNumber string     `json:"vehiclePlateNumber"`
	Services           []string   `json:"services"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	Private            bool       `json:"private"`
	Location           *string    `json:"location,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateReservationRequest) ToUseCaseRequest(actorID string, reservationID int64) *updateReservation.Request {
	services := make([]domain.ServiceType, 0, len(r.Services))
	for _, s := range r.Services {
		services = append(services, domain.ServiceType(s))
	}

	return &updateReservation.Request{
		ActorID:            actorID,
		ReservationID:      reservationID,
		VehiclePlateNumber: r.VehiclePlateNumber,
		Services:           services,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		Private:            r.Private,
		Location:           r.Location,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *updateReservation.Response) *models.ReservationResponse {
	end := resp.EndDate
	return models.FromDomainReservation(&domain.Reservation{
		ID:                 resp.ID,
		UserID:             resp.UserID,
		CreatedByID:        resp.CreatedByID,
		VehiclePlateNumber: resp.VehiclePlateNumber,
		Services:           resp.Services,
		StartDate:          resp.StartDate,
		EndDate:            &end,
		TimeRequirement:    resp.TimeRequirement,
		State:              resp.State,
		Private:            resp.Private,
		Mpv:                resp.Mpv,
		Location:           resp.Location,
		Comments:           resp.Comments,
		CreatedAt:          resp.CreatedAt,
		UpdatedAt:          resp.UpdatedAt,
	})
}
