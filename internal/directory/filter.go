package directory

import (
	"net/url"
	"strings"

	"github.com/foundersportal/portal/backend/go-services/internal/tabular"
)

// Filter narrows a listing. The zero value matches everything.
type Filter struct {
	Query    string
	Sectors  []string
	Location string
}

// FilterFromQuery reads q, sector and location. sector may be repeated or comma-separated.
func FilterFromQuery(v url.Values) Filter {
	f := Filter{
		Query:    strings.TrimSpace(v.Get("q")),
		Location: strings.TrimSpace(v.Get("location")),
	}
	for _, s := range v["sector"] {
		f.Sectors = append(f.Sectors, tabular.SplitList(s)...)
	}
	return f
}

func (f Filter) IsZero() bool {
	return f.Query == "" && len(f.Sectors) == 0 && f.Location == ""
}

// Matches applies every non-empty criterion of f to item.
func (k Kind[T]) Matches(f Filter, item T) bool {
	if f.Query != "" && !anyContains(k.Search(item), f.Query) {
		return false
	}
	if len(f.Sectors) > 0 && !anyEqualFold(k.Tags(item), f.Sectors) {
		return false
	}
	if f.Location != "" && !containsFold(k.Location(item), f.Location) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func anyContains(fields []string, q string) bool {
	for _, s := range fields {
		if containsFold(s, q) {
			return true
		}
	}
	return false
}

func anyEqualFold(tags, want []string) bool {
	for _, t := range tags {
		for _, w := range want {
			if strings.EqualFold(strings.TrimSpace(t), w) {
				return true
			}
		}
	}
	return false
}
