// Package pagination renders page navigation built by the pagination package.
//
// Two components are provided: Nav for numbered page links with previous and
// next arrows, and Legacy for the older label-based layout with a results
// summary. Both render nothing when there is only one page.
package pagination

// Config allows customization of the rendered navigation.
type Config struct {
	Label string // aria-label of the nav element, default "Pagination"
	Class string // extra classes merged into the nav element's classes
}

func (c Config) label() string {
	if c.Label == "" {
		return "Pagination"
	}
	return c.Label
}

// Base classes. Config.Class is merged into navClass so callers can override
// spacing or alignment.
const (
	navClass      = "flex flex-wrap items-center justify-between gap-4 mt-8 text-base"
	listClass     = "flex flex-wrap items-center gap-1 list-none p-0 m-0"
	linkClass     = "inline-block min-w-10 px-3 py-2 text-center underline text-link hover:text-link-hover focus:bg-focus focus:text-black"
	currentClass  = "inline-block min-w-10 px-3 py-2 text-center font-bold text-white bg-link no-underline"
	ellipsisClass = "inline-block min-w-10 px-3 py-2 text-center text-secondary"
	arrowClass    = "inline-flex items-center gap-2 px-3 py-2 font-bold underline text-link hover:text-link-hover focus:bg-focus focus:text-black"
	resultsClass  = "text-secondary m-0"
)
