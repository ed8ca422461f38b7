package pagination

import (
	"context"
	"fmt"
	"io"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/hmpps/incentives-ui/internal/format"
	"github.com/hmpps/incentives-ui/internal/pagination"
)

// Nav renders numbered page navigation.
func Nav(nav pagination.Navigation, cfg Config) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if nav.Empty() {
			return nil
		}

		var b strings.Builder
		openNav(&b, cfg)
		if nav.Previous != nil {
			arrow(&b, "prev", "Previous", "page", nav.Previous.Href)
		}

		b.WriteString(`<ul class="` + listClass + `">`)
		for _, item := range nav.Items {
			b.WriteString("<li>")
			switch {
			case item.Ellipsis:
				b.WriteString(`<span class="` + ellipsisClass + `">&ctdot;</span>`)
			case item.Current:
				fmt.Fprintf(&b, `<a class="%s" href="%s" aria-label="Page %d" aria-current="page">%d</a>`,
					currentClass, templ.EscapeString(item.Href), item.Number, item.Number)
			default:
				fmt.Fprintf(&b, `<a class="%s" href="%s" aria-label="Page %d">%d</a>`,
					linkClass, templ.EscapeString(item.Href), item.Number, item.Number)
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")

		if nav.Next != nil {
			arrow(&b, "next", "Next", "page", nav.Next.Href)
		}
		b.WriteString("</nav>")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Legacy renders label-based navigation with a "Showing X to Y of Z results"
// summary. The summary is shown even when there is a single page.
func Legacy(nav pagination.LegacyNavigation, cfg Config) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if nav.Results.Count == 0 && len(nav.Items) == 0 {
			return nil
		}

		var b strings.Builder
		openNav(&b, cfg)

		if nav.Results.Count > 0 {
			fmt.Fprintf(&b, `<p class="%s">Showing <b>%s</b> to <b>%s</b> of <b>%s</b> results</p>`,
				resultsClass,
				format.Number(nav.Results.From),
				format.Number(nav.Results.To),
				format.Number(nav.Results.Count),
			)
		}

		if len(nav.Items) > 0 {
			b.WriteString(`<ul class="` + listClass + `">`)
			if nav.Previous != nil {
				b.WriteString("<li>")
				arrow(&b, "prev", nav.Previous.Text, "set of pages", nav.Previous.Href)
				b.WriteString("</li>")
			}
			for _, item := range nav.Items {
				b.WriteString("<li>")
				switch {
				case item.Type == pagination.LegacyItemTypeDots:
					b.WriteString(`<span class="` + ellipsisClass + `">&hellip;</span>`)
				case item.Selected:
					fmt.Fprintf(&b, `<a class="%s" href="%s" aria-current="page">%s</a>`,
						currentClass, templ.EscapeString(item.Href), templ.EscapeString(item.Text))
				default:
					fmt.Fprintf(&b, `<a class="%s" href="%s">%s</a>`,
						linkClass, templ.EscapeString(item.Href), templ.EscapeString(item.Text))
				}
				b.WriteString("</li>")
			}
			if nav.Next != nil {
				b.WriteString("<li>")
				arrow(&b, "next", nav.Next.Text, "set of pages", nav.Next.Href)
				b.WriteString("</li>")
			}
			b.WriteString("</ul>")
		}
		b.WriteString("</nav>")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func openNav(b *strings.Builder, cfg Config) {
	fmt.Fprintf(b, `<nav class="%s" aria-label="%s">`,
		templ.EscapeString(twmerge.Merge(navClass, cfg.Class)),
		templ.EscapeString(cfg.label()),
	)
}

// arrow writes a previous or next link. hidden completes the visually hidden
// part of the label, e.g. "Next page".
func arrow(b *strings.Builder, rel, text, hidden, href string) {
	fmt.Fprintf(b, `<a class="%s" href="%s" rel="%s">%s<span class="sr-only"> %s</span></a>`,
		arrowClass,
		templ.EscapeString(href),
		rel,
		templ.EscapeString(text),
		hidden,
	)
}
