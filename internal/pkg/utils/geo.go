package utils

import "math"

const earthRadiusMeters = 6371000.0

// HaversineDistance вычисляет расстояние по большому кругу между двумя
// точками в метрах. Периодичность тригонометрических членов дает кратчайший
// путь и для разниц долгот около ±180°, отдельной обработки антимеридиана нет.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateRadius проверяет валидность радиуса поиска (100 м - 100 км)
func ValidateRadius(radiusMeters int) bool {
	return radiusMeters >= 100 && radiusMeters <= 100000
}
