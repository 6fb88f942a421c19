package domain

import "time"

const secondsPerDay = 24 * 60 * 60

// Quote is the price of a stay
type Quote struct {
	Nights int     `json:"nights"`
	Total  float64 `json:"totalPrice"`
}

// ComputeQuote prices a stay at a nightly rate.
// The check-out calendar date (UTC) must be strictly after the check-in date.
// Partial days round up to a full night.
func ComputeQuote(price float64, checkIn, checkOut time.Time) (Quote, error) {
	if !dateOf(checkOut).After(dateOf(checkIn)) {
		return Quote{}, ErrInvalidDateRange
	}
	nights := int(ceilDiv(elapsedSeconds(checkIn, checkOut), secondsPerDay))
	return Quote{Nights: nights, Total: float64(nights) * price}, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// elapsedSeconds is the whole seconds from a to b, a partial second counting as one.
// Unlike Time.Sub it does not saturate on ranges of centuries.
func elapsedSeconds(a, b time.Time) int64 {
	secs := b.Unix() - a.Unix()
	if b.Nanosecond() > a.Nanosecond() {
		secs++
	}
	return secs
}

func ceilDiv(n, d int64) int64 {
	return (n + d - 1) / d
}
