package dto

import "github.com/discovery-microservice/internal/domain"

// PreviousFix - предыдущая известная геопозиция клиента
type PreviousFix struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// DiscoverRequest - запрос на обнаружение достопримечательностей вокруг точки
type DiscoverRequest struct {
	Latitude     float64          `json:"latitude" validate:"min=-90,max=90"`
	Longitude    float64          `json:"longitude" validate:"min=-180,max=180"`
	RadiusMeters int              `json:"radius_meters" validate:"omitempty,min=100,max=100000"`
	Interests    []string         `json:"interests"`
	GPSStatus    domain.GPSStatus `json:"gps_status"`
	Previous     *PreviousFix     `json:"previous,omitempty"`
}

// DiscoverResponse - список достопримечательностей фазы 1.
// Ranked=false означает, что фоновое ранжирование еще может обновить кеш.
type DiscoverResponse struct {
	Attractions []domain.Attraction `json:"attractions"`
	Ranked      bool                `json:"ranked"`
	Cached      bool                `json:"cached"`
}
