// Package validator turns raw booking submissions into normalized bookings.
package validator

import (
	"strconv"
	"strings"
	"time"

	"northline/internal/models"

	"github.com/google/uuid"
)

// Field keys used in Errors.
const (
	FieldID       = "id"
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldService  = "service"
	FieldDate     = "date"
	FieldTime     = "time"
	FieldDateTime = "date_time"
)

// Messages reported per field.
var (
	MsgName           = "Name must be at least 2 characters."
	MsgEmail          = "Email must be valid."
	MsgPhone          = "Phone must match " + models.PhonePatternText + "."
	MsgService        = "Service must be one of: " + strings.Join(models.Services, ", ") + "."
	MsgDateFormat     = "Date must use " + models.DateFormat + "."
	MsgTimeFormat     = "Time must use " + models.TimeFormat + "."
	MsgBusinessHours  = "Time must be between 09:00 and 17:00."
	MsgInvalidInstant = "Date/time is not valid."
	MsgPastInstant    = "Date/time must be in the future."
	MsgDuplicateID    = "Booking id already exists."
)

const instantLayout = "2006-01-02T15:04"

// Result is the outcome of a validation. Booking is always populated with
// the normalized fields, but only OK results may be persisted.
type Result struct {
	OK      bool
	Booking models.Booking
	Errors  Errors
}

// Validator checks submissions against the booking catalog.
type Validator struct {
	now func() time.Time
	loc *time.Location
	ids func() string
}

type Option func(*Validator)

// WithClock overrides the wall clock used for the future-instant check.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLocation sets the zone in which date and time are interpreted.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) {
		if loc != nil {
			v.loc = loc
		}
	}
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(ids func() string) Option {
	return func(v *Validator) {
		if ids != nil {
			v.ids = ids
		}
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{
		now: time.Now,
		loc: time.Local,
		ids: uuid.NewString,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate normalizes raw and collects every applicable field error.
func (v *Validator) Validate(raw models.RawInput) Result {
	booking := models.Booking{
		ID:      raw.GetText(FieldID),
		Name:    strings.TrimSpace(raw.GetText(FieldName)),
		Email:   strings.TrimSpace(raw.GetText(FieldEmail)),
		Phone:   strings.TrimSpace(raw.GetText(FieldPhone)),
		Service: raw.GetText(FieldService),
		Date:    raw.GetText(FieldDate),
		Time:    raw.GetText(FieldTime),
		Notes:   strings.TrimSpace(raw.GetText("notes")),
	}
	if booking.ID == "" {
		booking.ID = v.ids()
	}

	errs := Errors{}

	if len([]rune(booking.Name)) < 2 {
		errs[FieldName] = MsgName
	}
	if booking.Email == "" || !strings.Contains(booking.Email, "@") {
		errs[FieldEmail] = MsgEmail
	}
	if !models.PhonePattern.MatchString(booking.Phone) {
		errs[FieldPhone] = MsgPhone
	}
	if !models.IsService(booking.Service) {
		errs[FieldService] = MsgService
	}
	if !models.DatePattern.MatchString(booking.Date) {
		errs[FieldDate] = MsgDateFormat
	}
	if !models.TimePattern.MatchString(booking.Time) {
		errs[FieldTime] = MsgTimeFormat
	} else if !IsBusinessHours(booking.Time) {
		errs[FieldTime] = MsgBusinessHours
	}

	if !errs.Has(FieldDate) && !errs.Has(FieldTime) {
		at, err := time.ParseInLocation(instantLayout, booking.SortKey(), v.loc)
		switch {
		case err != nil:
			errs[FieldDate] = MsgInvalidInstant
		case !at.After(v.now()):
			errs[FieldDateTime] = MsgPastInstant
		}
	}

	return Result{
		OK:      len(errs) == 0,
		Booking: booking,
		Errors:  errs,
	}
}

// ValidateBooking re-validates an already typed booking.
func (v *Validator) ValidateBooking(b models.Booking) Result {
	return v.Validate(b.Input())
}

// IsBusinessHours reports whether an HH:MM value falls inside the
// inclusive business-hours window.
func IsBusinessHours(hhmm string) bool {
	if !models.TimePattern.MatchString(hhmm) {
		return false
	}
	hour, _ := strconv.Atoi(hhmm[:2])
	minute, _ := strconv.Atoi(hhmm[3:])
	total := hour*60 + minute
	return total >= models.OpenMinute && total <= models.CloseMinute
}
