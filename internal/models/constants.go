package models

import "regexp"

// Services offered for booking. The order is the one shown to clients.
var Services = []string{
	"Consultation",
	"Follow-up Session",
	"Premium Planning",
	"Virtual Meeting",
}

const (
	PhonePatternText = `[0-9+()\-\s]{7,}`
	DateFormat       = "YYYY-MM-DD"
	TimeFormat       = "HH:MM"

	// OpenMinute and CloseMinute bound the business-hours window, both inclusive.
	OpenMinute  = 9 * 60
	CloseMinute = 17 * 60

	BusinessHoursText = "09:00-17:00"
)

var (
	PhonePattern = regexp.MustCompile(`^` + PhonePatternText + `$`)
	DatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	TimePattern  = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

const (
	// StorageKey names the persisted collection in key-value backends.
	StorageKey = "northline_bookings"

	// AdminPasscodeHeader carries the operator passcode on destructive requests.
	AdminPasscodeHeader = "x-admin-passcode"

	// DefaultAdminPasscode is used when no passcode is configured.
	DefaultAdminPasscode = "admin123"

	APIName    = "NorthlineBookingAPI"
	APIVersion = "2.0.0"
	APIBase    = "/api"
)

// IsService reports whether name is one of the offered services.
func IsService(name string) bool {
	for _, s := range Services {
		if s == name {
			return true
		}
	}
	return false
}
