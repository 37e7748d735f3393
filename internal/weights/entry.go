package weights

import "time"

type Entry struct {
	ID         int       `json:"id"`
	UserID     int       `json:"-"`
	WeightKg   float64   `json:"weightKg"`
	MeasuredAt time.Time `json:"measuredAt"`
	Note       string    `json:"note"`
}
