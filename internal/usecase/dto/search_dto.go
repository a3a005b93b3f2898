package dto

import "github.com/discovery-microservice/internal/domain"

// SearchRequest - параметры текстового поиска локаций
type SearchRequest struct {
	Query string `json:"q"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

// SearchResponse - результаты текстового поиска
type SearchResponse struct {
	Results []domain.SearchResult `json:"results"`
	Total   int                   `json:"total"`
}

// TypeaheadRequest - очередное состояние строки поиска в рамках сессии
type TypeaheadRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
	Query     string `json:"q"`
}

// SelectResultRequest - выбранный пользователем результат поиска
type SelectResultRequest struct {
	Result domain.SearchResult `json:"result" validate:"required"`
}

// ReverseGeocodeRequest - координаты для обратного геокодирования
type ReverseGeocodeRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// CityResponse - нормализованное описание места
type CityResponse struct {
	City domain.CityInfo `json:"city"`
}
