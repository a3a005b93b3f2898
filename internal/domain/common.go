package domain

// Coordinates представляет географическую точку в градусах
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GPSStatus - состояние источника геопозиции на стороне клиента
type GPSStatus string

const (
	GPSActive           GPSStatus = "active"
	GPSSearching        GPSStatus = "searching"
	GPSUnavailable      GPSStatus = "unavailable"
	GPSPermissionDenied GPSStatus = "permission_denied"
	GPSDisabled         GPSStatus = "disabled"
)

// AllowsFetch сообщает, можно ли при данном статусе GPS ходить за свежими данными.
// При недоступном GPS пайплайн работает только из кеша.
func (s GPSStatus) AllowsFetch() bool {
	switch s {
	case GPSUnavailable, GPSPermissionDenied, GPSDisabled:
		return false
	}
	return true
}
