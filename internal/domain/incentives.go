package domain

import (
	"regexp"
	"strings"
	"time"
)

// IncentiveLevel is a level such as Basic, Standard or Enhanced.
type IncentiveLevel struct {
	Code     string
	Name     string
	Active   bool
	Required bool
}

var levelCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,6}$`)

// Validate checks a level before it is sent to the incentives API.
func (l *IncentiveLevel) Validate(op string, isNew bool) error {
	var ve *ValidationError
	if isNew && !levelCodePattern.MatchString(l.Code) {
		ve = ve.Add("code", "Code must be 2 to 6 capital letters or numbers")
	}
	name := strings.TrimSpace(l.Name)
	if name == "" {
		ve = ve.Add("name", "Enter a name")
	} else if len(name) > 30 {
		ve = ve.Add("name", "Name must be 30 characters or fewer")
	}
	if l.Required && !l.Active {
		ve = ve.Add("active", "A required level must be active")
	}
	if ve != nil {
		ve.Op = op
		return ve
	}
	return nil
}

// ReviewLevel summarises one incentive level tab of a reviews table.
type ReviewLevel struct {
	LevelCode    string
	LevelName    string
	ReviewCount  int
	OverdueCount int
}

// Review is one prisoner row of a reviews table.
type Review struct {
	PrisonerNumber      string
	BookingID           int64
	FirstName           string
	LastName            string
	LevelCode           string
	PositiveBehaviours  int
	NegativeBehaviours  int
	HasACCTOpen         bool
	IsNewToPrison       bool
	NextReviewDate      time.Time
	DaysSinceLastReview *int
}

// IsOverdue reports whether the next review date has passed.
func (r *Review) IsOverdue(now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !r.NextReviewDate.IsZero() && r.NextReviewDate.Before(today)
}

// ReviewsTable is one page of reviews for a location and level.
type ReviewsTable struct {
	LocationDescription string
	OverdueCount        int
	Levels              []ReviewLevel
	Reviews             []Review
}

// ReviewCount returns the number of reviews for levelCode across all pages.
func (t *ReviewsTable) ReviewCount(levelCode string) int {
	for _, level := range t.Levels {
		if level.LevelCode == levelCode {
			return level.ReviewCount
		}
	}
	return 0
}

// ReviewsQuery selects a page of a reviews table. Page is 1-indexed.
type ReviewsQuery struct {
	AgencyID       string
	LocationPrefix string
	LevelCode      string
	Sort           ReviewSort
	Page           int
	PageSize       int
}

// IncentiveReview is one entry in a prisoner's incentive history.
type IncentiveReview struct {
	Date      time.Time
	Level     string
	AgencyID  string
	Comments  string
	UserID    string
	Automatic bool
}

// IncentiveHistory is a prisoner's current level and past reviews, newest first.
type IncentiveHistory struct {
	PrisonerNumber  string
	BookingID       int64
	CurrentLevel    string
	NextReviewDate  time.Time
	DaysSinceReview int
	Reviews         []IncentiveReview
}
