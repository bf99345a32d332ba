package models

import "time"

// WeatherSnapshot is the result of one successful provider fetch.
type WeatherSnapshot struct {
	City         string    `json:"city"`
	TemperatureC float64   `json:"temperatureC"`
	Humidity     int       `json:"humidity"`
	WindSpeed    float64   `json:"windSpeed"` // m/s
	Condition    string    `json:"condition"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// Fahrenheit returns the snapshot temperature converted from Celsius.
func (s WeatherSnapshot) Fahrenheit() float64 {
	return CelsiusToFahrenheit(s.TemperatureC)
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
