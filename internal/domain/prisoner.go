package domain

import "regexp"

// ThumbnailJPEGQuality is the JPEG quality used for resized prisoner photos.
const ThumbnailJPEGQuality = 85

var prisonerNumberPattern = regexp.MustCompile(`^[A-Z][0-9]{4}[A-Z]{2}$`)

// ValidPrisonerNumber reports whether s looks like a NOMIS prisoner number (A1234BC).
func ValidPrisonerNumber(s string) bool {
	return prisonerNumberPattern.MatchString(s)
}

// Prisoner holds the basic details shown above a prisoner's incentive history.
type Prisoner struct {
	PrisonerNumber string
	BookingID      int64
	FirstName      string
	LastName       string
	AgencyID       string
	Location       string
}

// Location is a residential wing that reviews can be listed for.
type Location struct {
	Prefix      string // e.g. "MDI-1"
	Description string // e.g. "Houseblock 1"
}
