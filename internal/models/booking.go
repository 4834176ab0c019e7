package models

import "strings"

// Booking is one appointment record. Date and Time are kept as the
// fixed-width strings the client submitted so that their concatenation
// sorts chronologically.
type Booking struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Notes   string `json:"notes"`
}

// SortKey orders bookings by scheduled instant.
func (b Booking) SortKey() string {
	return b.Date + "T" + b.Time
}

// Matches reports whether the lower-cased query occurs in the booking's
// searchable fields.
func (b Booking) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{b.Name, b.Service, b.Email, b.Phone}, " "))
	return strings.Contains(haystack, q)
}

// Input returns the booking as raw submission data.
func (b Booking) Input() RawInput {
	return RawInput{
		"id":      b.ID,
		"name":    b.Name,
		"email":   b.Email,
		"phone":   b.Phone,
		"service": b.Service,
		"date":    b.Date,
		"time":    b.Time,
		"notes":   b.Notes,
	}
}

// BookingFromInput reads a stored record with the same text coercion as
// submissions. Values are kept as stored, without trimming.
func BookingFromInput(in RawInput) Booking {
	return Booking{
		ID:      in.GetText("id"),
		Name:    in.GetText("name"),
		Email:   in.GetText("email"),
		Phone:   in.GetText("phone"),
		Service: in.GetText("service"),
		Date:    in.GetText("date"),
		Time:    in.GetText("time"),
		Notes:   in.GetText("notes"),
	}
}
