package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncentiveLevel_Validate(t *testing.T) {
	tests := []struct {
		name       string
		level      IncentiveLevel
		isNew      bool
		wantFields []string
	}{
		{"valid new level", IncentiveLevel{Code: "EN2", Name: "Enhanced 2", Active: true}, true, nil},
		{"lower case code", IncentiveLevel{Code: "en2", Name: "Enhanced 2"}, true, []string{"code"}},
		{"code too long", IncentiveLevel{Code: "ENHANCED", Name: "Enhanced"}, true, []string{"code"}},
		{"code ignored on edit", IncentiveLevel{Code: "", Name: "Standard", Active: true}, false, nil},
		{"blank name", IncentiveLevel{Code: "STD", Name: "  "}, true, []string{"name"}},
		{"name too long", IncentiveLevel{Code: "STD", Name: "A name that is far too long for a level"}, false, []string{"name"}},
		{"required but inactive", IncentiveLevel{Code: "STD", Name: "Standard", Required: true}, false, []string{"active"}},
		{"several problems", IncentiveLevel{Code: "x", Name: "", Required: true}, true, []string{"code", "name", "active"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.level.Validate("test", tt.isNew)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "test", ve.Op)
			assert.Len(t, ve.Fields, len(tt.wantFields))
			for _, field := range tt.wantFields {
				assert.Contains(t, ve.Fields, field)
			}
		})
	}
}

func TestReview_IsOverdue(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	yesterday := Review{NextReviewDate: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}
	today := Review{NextReviewDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}
	unknown := Review{}

	assert.True(t, yesterday.IsOverdue(now))
	assert.False(t, today.IsOverdue(now))
	assert.False(t, unknown.IsOverdue(now))
}

func TestReviewsTable_ReviewCount(t *testing.T) {
	table := ReviewsTable{Levels: []ReviewLevel{
		{LevelCode: "BAS", ReviewCount: 3},
		{LevelCode: "STD", ReviewCount: 41},
	}}

	assert.Equal(t, 41, table.ReviewCount("STD"))
	assert.Equal(t, 0, table.ReviewCount("ENH"))
}

func TestUser_Roles(t *testing.T) {
	user := &User{
		Roles:            []string{RoleMaintainIncentiveLevels},
		ActiveCaseloadID: "MDI",
		Caseloads:        []Caseload{{ID: "LEI", Name: "Leeds"}, {ID: "MDI", Name: "Moorland"}},
	}

	assert.True(t, user.HasRole(RoleMaintainIncentiveLevels))
	assert.False(t, user.HasRole(RoleGlobalSearch))
	require.NotNil(t, user.ActiveCaseload())
	assert.Equal(t, "Moorland", user.ActiveCaseload().Name)

	var nobody *User
	assert.False(t, nobody.HasRole(RoleMaintainIncentiveLevels))
	assert.Nil(t, nobody.ActiveCaseload())
}

func TestFeedback_Validate(t *testing.T) {
	assert.NoError(t, (&Feedback{Message: "The table is great"}).Validate())
	assert.NoError(t, (&Feedback{Message: "Hi", Email: "someone@justice.gov.uk"}).Validate())

	err := (&Feedback{Message: " ", Email: "not-an-email"}).Validate()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "message")
	assert.Contains(t, ve.Fields, "email")
}

func TestValidPrisonerNumber(t *testing.T) {
	assert.True(t, ValidPrisonerNumber("A1234BC"))
	assert.False(t, ValidPrisonerNumber("a1234bc"))
	assert.False(t, ValidPrisonerNumber("A1234BC/../"))
	assert.False(t, ValidPrisonerNumber(""))
}
