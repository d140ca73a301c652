package create_reservation

import (
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/internal/service/reservations/models"
	createReservation "github.com/mark-szabo/carwash/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	UserID              string     `json:"userId,omitempty"` // пусто - бронирование на себя
	VehiclePlateNumber  string     `json:"vehiclePlateNumber"`
	Services            []string   `json:"services"`
	StartDate           time.Time  `json:"startDate"`
	EndDate             *time.Time `json:"endDate,omitempty"`
	Private             bool       `json:"private"`
	Location            *string    `json:"location,omitempty"`
	DropoffPreConfirmed bool       `json:"dropoffPreConfirmed"`
	Comment             *string    `json:"comment,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(actorID string) *createReservation.Request {
	services := make([]domain.ServiceType, 0, len(r.Services))
	for _, s := range r.Services {
		services = append(services, domain.ServiceType(s))
	}

	return &createReservation.Request{
		ActorID:             actorID,
		UserID:              r.UserID,
		VehiclePlateNumber:  r.VehiclePlateNumber,
		Services:            services,
		StartDate:           r.StartDate,
		EndDate:             r.EndDate,
		Private:             r.Private,
		Location:            r.Location,
		DropoffPreConfirmed: r.DropoffPreConfirmed,
		Comment:             r.Comment,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *models.ReservationResponse {
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
