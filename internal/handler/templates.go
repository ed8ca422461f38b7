package handler

import (
	"context"
	"fmt"
	"html/template"
	"time"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/hmpps/incentives-ui/internal/csrf"
	"github.com/hmpps/incentives-ui/internal/format"
	"github.com/hmpps/incentives-ui/internal/pagination"
	paginationui "github.com/hmpps/incentives-ui/internal/templ/components/pagination"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Formatting
		"formatNumber": format.Number,
		"percentage":   format.Percentage,
		"pluralise":    format.Pluralise,
		"formatName":   format.Name,
		"reversedName": format.ReversedName,
		"possessive":   format.Possessive,
		"yesNo":        format.YesNo,
		"formatDate": func(t time.Time, style string) string {
			return format.Date(t, style)
		},
		"daysSince": format.DaysSince,
		"year": func() int {
			return time.Now().Year()
		},

		// classes merges Tailwind class lists, later lists winning conflicts
		"classes": func(lists ...string) string {
			return twmerge.Merge(lists...)
		},

		// Class lists for page states
		"flashClasses": func(flashType string) string {
			switch flashType {
			case "success":
				return "border-success"
			case "error":
				return "border-error"
			default:
				return "border-link"
			}
		},
		"fieldClasses": func(message string) string {
			if message == "" {
				return ""
			}
			return "border-l-4 border-error pl-4"
		},
		"tabClasses": func(selected bool) string {
			if !selected {
				return ""
			}
			return "bg-white border border-b-0 border-grey-mid no-underline text-black font-bold"
		},
		"overdueClasses": func(overdue bool) string {
			if !overdue {
				return ""
			}
			return "text-error font-bold"
		},

		// Collection functions
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("dict needs an even number of arguments")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict key %v is not a string", values[i])
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},

		// Form helpers
		"csrfField": func(token string) template.HTML {
			return template.HTML(fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`,
				csrf.FormFieldName, template.HTMLEscapeString(token)))
		},

		// Pagination components
		"pagination": func(nav pagination.Navigation, label string) (template.HTML, error) {
			return renderComponent(paginationui.Nav(nav, paginationui.Config{Label: label}))
		},
		"legacyPagination": func(nav pagination.LegacyNavigation, label string) (template.HTML, error) {
			return renderComponent(paginationui.Legacy(nav, paginationui.Config{Label: label}))
		},
	}
}

// renderComponent renders a templ component for inclusion in an html/template page.
func renderComponent(c templ.Component) (template.HTML, error) {
	return templ.ToGoHTML(context.Background(), c)
}
