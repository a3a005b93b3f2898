package domain

// SearchResult - один кандидат из текстового поиска локаций.
// Порядок полей и значений фиксируется провайдером, объект неизменяемый.
type SearchResult struct {
	ID            int64       `json:"id"`
	DisplayName   string      `json:"display_name"`
	PrimaryName   string      `json:"primary_name"`
	SecondaryInfo string      `json:"secondary_info"`
	Coordinates   Coordinates `json:"coordinates"`
	Type          string      `json:"type"`
	Importance    float64     `json:"importance"`
}

// CityInfo - нормализованное описание места. Получается либо из обратного
// геокодирования, либо конвертацией выбранного SearchResult.
type CityInfo struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	State       *string `json:"state,omitempty"`
	FullAddress string  `json:"full_address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Attraction представляет точку интереса рядом с запрошенной локацией.
// InterestScore/InterestReason заполняются только ранкером, остальные поля -
// при разборе ответа провайдера.
type Attraction struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Coordinates    Coordinates `json:"coordinates"`
	Type           string      `json:"type"`
	Distance       float64     `json:"distance"`
	Rating         float64     `json:"rating"`
	InterestScore  *float64    `json:"interest_score,omitempty"`
	InterestReason *string     `json:"interest_reason,omitempty"`
}

// AttractionScore - оценка одной достопримечательности от скорингового сервиса
type AttractionScore struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}
