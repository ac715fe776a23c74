package models

import "time"

// Car is the catalog row reporting joins against; the rental workflow itself
// lives in another service.
type Car struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	DailyRate float64   `json:"daily_rate"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}
