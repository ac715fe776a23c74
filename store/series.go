package store

import (
	"time"

	"velocars/api/models"
)

// FillDailySeries turns a sparse date->count map into a dense series of exactly
// `days` buckets ending on end's calendar day (UTC). Days with no events carry
// a zero count so charts never have holes.
func FillDailySeries(end time.Time, days int, sparse map[string]uint64) []models.DayCount {
	if days < 1 {
		return nil
	}

	start := end.UTC().AddDate(0, 0, -(days - 1))
	series := make([]models.DayCount, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, models.DayCount{Date: date, Count: sparse[date]})
	}
	return series
}
