package create_reservation

import (
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	ActorID             string               // кто создает (X-User-ID)
	UserID              string               // владелец; пусто - сам ActorID
	VehiclePlateNumber  string               // госномер, нормализуется
	Services            []domain.ServiceType // набор услуг
	StartDate           time.Time            // начало слота (UTC)
	EndDate             *time.Time           // конец слота; nil - берётся из календаря
	Private             bool                 // частный заказ, оплата на месте
	Location            *string              // "building/floor/spot"
	DropoffPreConfirmed bool                 // ключи уже оставлены
	Comment             *string              // первый комментарий (опционально)
}

// Response модель ответа с созданным бронированием
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
