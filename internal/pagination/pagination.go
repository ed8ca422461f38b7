// Package pagination computes the page navigation shown under paginated tables.
//
// A single window computation backs two output shapes: Navigation, used by the
// current pagination component, and LegacyNavigation, which carries text labels
// and a "showing X to Y of Z results" summary for older page layouts.
package pagination

import (
	"strconv"

	"github.com/hmpps/incentives-ui/internal/domain"
)

// Gap marks the position of an ellipsis in the slice returned by Window.
const Gap = -1

// Window returns the page numbers to display for the given page, in order, with Gap
// standing in for each elided range. It returns nil when totalPages is 1 or less.
//
// currentPage is clamped into [1, totalPages].
func Window(currentPage, totalPages int) []int {
	if totalPages <= 1 {
		return nil
	}
	currentPage = clamp(currentPage, totalPages)

	var pages []int
	if currentPage >= 5 {
		pages = []int{1, 2, Gap, currentPage - 1, currentPage}
	} else {
		pages = make([]int, 0, currentPage+4)
		for p := 1; p <= currentPage; p++ {
			pages = append(pages, p)
		}
	}

	maxPage := currentPage
	switch {
	case maxPage == totalPages-1:
		pages = append(pages, totalPages)
	case maxPage == totalPages-2:
		pages = append(pages, totalPages-1, totalPages)
	case maxPage == totalPages-3:
		pages = append(pages, maxPage+1, totalPages-1, totalPages)
	case maxPage <= totalPages-4:
		pages = append(pages, maxPage+1, Gap, totalPages-1, totalPages)
	}
	return pages
}

// TotalPages returns the number of pages needed for count results at perPage a page.
func TotalPages(count, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 0
	}
	return (count + perPage - 1) / perPage
}

// clamp keeps a requested page inside [1, totalPages]. Page links are built from
// query strings, so anything outside that range is treated as the nearest real page.
func clamp(currentPage, totalPages int) int {
	if currentPage > totalPages {
		currentPage = totalPages
	}
	if currentPage < 1 {
		currentPage = 1
	}
	return currentPage
}

func href(prefix string, page int) string {
	return prefix + "page=" + strconv.Itoa(page)
}

// =============================================================================
// Navigation
// =============================================================================

// Link is a previous or next link.
type Link struct {
	Href string
}

// Item is either a numbered page link or an ellipsis.
type Item struct {
	Number   int
	Href     string
	Current  bool
	Ellipsis bool
}

// Navigation is the input for the pagination component.
type Navigation struct {
	Previous *Link
	Next     *Link
	Items    []Item
}

// Empty reports whether there is nothing to render.
func (n Navigation) Empty() bool {
	return len(n.Items) == 0
}

// Compute builds the navigation for currentPage out of totalPages. hrefPrefix must
// already end in "?" or "&"; "page=N" is appended to it for every link.
func Compute(currentPage, totalPages int, hrefPrefix string) Navigation {
	nav := Navigation{Items: []Item{}}
	if totalPages <= 1 {
		return nav
	}
	currentPage = clamp(currentPage, totalPages)

	if currentPage != 1 {
		nav.Previous = &Link{Href: href(hrefPrefix, currentPage-1)}
	}
	if currentPage < totalPages {
		nav.Next = &Link{Href: href(hrefPrefix, currentPage+1)}
	}

	for _, page := range Window(currentPage, totalPages) {
		if page == Gap {
			nav.Items = append(nav.Items, Item{Ellipsis: true})
			continue
		}
		nav.Items = append(nav.Items, Item{
			Number:  page,
			Href:    href(hrefPrefix, page),
			Current: page == currentPage,
		})
	}
	return nav
}

// =============================================================================
// Legacy navigation
// =============================================================================

// LegacyItemTypeDots is the Type of an ellipsis item in LegacyNavigation.
const LegacyItemTypeDots = "dots"

// LegacyLink is a previous or next link with its label.
type LegacyLink struct {
	Text string
	Href string
}

// LegacyItem is a page link, or an ellipsis when Type is LegacyItemTypeDots.
type LegacyItem struct {
	Text     string
	Href     string
	Selected bool
	Type     string
}

// Results describes which rows the current page shows, 1-indexed and inclusive.
type Results struct {
	Count int
	From  int
	To    int
}

// LegacyNavigation is Navigation in the older label-based shape plus a results summary.
type LegacyNavigation struct {
	Previous *LegacyLink
	Next     *LegacyLink
	Items    []LegacyItem
	Results  Results
}

// ComputeLegacy builds the label-based navigation. resultsPerPage must be at least 1.
func ComputeLegacy(currentPage, totalPages int, hrefPrefix string, resultCount, resultsPerPage int) (LegacyNavigation, error) {
	if resultsPerPage < 1 {
		return LegacyNavigation{}, domain.Invalid("pagination.ComputeLegacy", "results per page must be at least 1")
	}

	nav := Compute(currentPage, totalPages, hrefPrefix)
	legacy := LegacyNavigation{
		Items:   make([]LegacyItem, 0, len(nav.Items)),
		Results: results(clamp(currentPage, totalPages), resultCount, resultsPerPage),
	}
	if nav.Previous != nil {
		legacy.Previous = &LegacyLink{Text: "Previous", Href: nav.Previous.Href}
	}
	if nav.Next != nil {
		legacy.Next = &LegacyLink{Text: "Next", Href: nav.Next.Href}
	}
	for _, item := range nav.Items {
		if item.Ellipsis {
			legacy.Items = append(legacy.Items, LegacyItem{Type: LegacyItemTypeDots})
			continue
		}
		legacy.Items = append(legacy.Items, LegacyItem{
			Text:     strconv.Itoa(item.Number),
			Href:     item.Href,
			Selected: item.Current,
		})
	}
	return legacy, nil
}

func results(currentPage, count, perPage int) Results {
	if count <= 0 {
		return Results{}
	}
	from := perPage*(currentPage-1) + 1
	if from < 1 {
		from = 1
	}
	to := perPage * currentPage
	if to > count {
		to = count
	}
	return Results{Count: count, From: from, To: to}
}
