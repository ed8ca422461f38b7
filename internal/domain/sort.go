package domain

import "strings"

// SortColumn is a sortable reviews table column, named as the incentives API expects.
type SortColumn string

const (
	SortNextReviewDate      SortColumn = "NEXT_REVIEW_DATE"
	SortDaysSinceLastReview SortColumn = "DAYS_SINCE_LAST_REVIEW"
	SortLastName            SortColumn = "LAST_NAME"
	SortPrisonerNumber      SortColumn = "PRISONER_NUMBER"
	SortPositiveBehaviours  SortColumn = "POSITIVE_BEHAVIOURS"
	SortNegativeBehaviours  SortColumn = "NEGATIVE_BEHAVIOURS"
	SortHasACCTOpen         SortColumn = "HAS_ACCT_OPEN"
	SortIsNewToPrison       SortColumn = "IS_NEW_TO_PRISON"
)

// SortColumns lists the sortable columns in display order.
var SortColumns = []SortColumn{
	SortLastName,
	SortPrisonerNumber,
	SortDaysSinceLastReview,
	SortNextReviewDate,
	SortPositiveBehaviours,
	SortNegativeBehaviours,
	SortHasACCTOpen,
	SortIsNewToPrison,
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	SortAscending  SortOrder = "ASC"
	SortDescending SortOrder = "DESC"
)

// ReviewSort is the column and order a reviews table is sorted by.
type ReviewSort struct {
	Column SortColumn
	Order  SortOrder
}

// DefaultReviewSort puts the most urgent reviews first.
var DefaultReviewSort = ReviewSort{Column: SortNextReviewDate, Order: SortAscending}

// defaultOrders is the order used when a column is first selected: counts and flags
// read best largest first, names and dates smallest first.
var defaultOrders = map[SortColumn]SortOrder{
	SortNextReviewDate:      SortAscending,
	SortDaysSinceLastReview: SortDescending,
	SortLastName:            SortAscending,
	SortPrisonerNumber:      SortAscending,
	SortPositiveBehaviours:  SortDescending,
	SortNegativeBehaviours:  SortDescending,
	SortHasACCTOpen:         SortDescending,
	SortIsNewToPrison:       SortDescending,
}

// ParseReviewSort reads sort and order query values. Unknown columns fall back to
// DefaultReviewSort, a missing or unknown order to the column's default order.
func ParseReviewSort(column, order string) ReviewSort {
	col := SortColumn(strings.ToUpper(strings.TrimSpace(column)))
	defaultOrder, ok := defaultOrders[col]
	if !ok {
		return DefaultReviewSort
	}

	switch SortOrder(strings.ToUpper(strings.TrimSpace(order))) {
	case SortAscending:
		return ReviewSort{Column: col, Order: SortAscending}
	case SortDescending:
		return ReviewSort{Column: col, Order: SortDescending}
	default:
		return ReviewSort{Column: col, Order: defaultOrder}
	}
}

// Toggle returns the sort to link to from the header of column: the opposite order
// when column is already sorted on, otherwise the column's default order.
func (s ReviewSort) Toggle(column SortColumn) ReviewSort {
	if s.Column != column {
		return ReviewSort{Column: column, Order: defaultOrders[column]}
	}
	if s.Order == SortAscending {
		return ReviewSort{Column: column, Order: SortDescending}
	}
	return ReviewSort{Column: column, Order: SortAscending}
}

// AriaSort returns the aria-sort attribute value for column.
func (s ReviewSort) AriaSort(column SortColumn) string {
	switch {
	case s.Column != column:
		return "none"
	case s.Order == SortAscending:
		return "ascending"
	default:
		return "descending"
	}
}
