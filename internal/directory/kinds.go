package directory

import (
	"errors"
	"strconv"
	"strings"

	"github.com/foundersportal/portal/backend/go-services/internal/database"
	"github.com/foundersportal/portal/backend/go-services/internal/tabular"
)

// Kind describes one directory record type: where it is stored and routed,
// how it is searched, and how it maps to spreadsheet columns.
type Kind[T Record] struct {
	// Name is the CLI name, e.g. "seed-investors".
	Name string
	// Segment is the URL path segment under /api and /api/admin.
	Segment    string
	Collection string
	// SortField is the bson field records are ordered by.
	SortField string
	New       func() T
	SortKey   func(T) string
	// Search returns the fields matched by the free-text query.
	Search   func(T) []string
	Tags     func(T) []string
	Location func(T) string
	Columns  []tabular.Column[T]
}

var Incubators = Kind[*Incubator]{
	Name:       "incubators",
	Segment:    "incubator-companies",
	Collection: database.Incubators,
	SortField:  "companyName",
	New:        func() *Incubator { return &Incubator{} },
	SortKey:    func(i *Incubator) string { return i.CompanyName },
	Search: func(i *Incubator) []string {
		return join([]string{i.CompanyName, i.Location, i.Description}, i.Sectors, i.FocusIndustries)
	},
	Tags:     func(i *Incubator) []string { return join(nil, i.Sectors, i.FocusIndustries) },
	Location: func(i *Incubator) string { return i.Location },
	Columns: []tabular.Column[*Incubator]{
		required("Company Name", func(i *Incubator) *string { return &i.CompanyName }),
		list("Sector", func(i *Incubator) *[]string { return &i.Sectors }),
		list("Focus Industries", func(i *Incubator) *[]string { return &i.FocusIndustries }),
		text("Location", func(i *Incubator) *string { return &i.Location }),
		text("Website", func(i *Incubator) *string { return &i.Website }),
		text("Email", func(i *Incubator) *string { return &i.Email }),
		text("Phone", func(i *Incubator) *string { return &i.Phone }),
		text("LinkedIn", func(i *Incubator) *string { return &i.LinkedIn }),
		text("Twitter", func(i *Incubator) *string { return &i.Twitter }),
		text("Description", func(i *Incubator) *string { return &i.Description }),
		text("Logo", func(i *Incubator) *string { return &i.Logo }),
		text("Funding Support", func(i *Incubator) *string { return &i.FundingSupport }),
		text("Program Duration", func(i *Incubator) *string { return &i.ProgramDuration }),
		text("Equity Taken", func(i *Incubator) *string { return &i.EquityTaken }),
		text("Application Link", func(i *Incubator) *string { return &i.ApplicationLink }),
		integer("Established Year", func(i *Incubator) *int { return &i.EstablishedYear }),
	},
}

var SeedInvestors = Kind[*SeedInvestor]{
	Name:       "seed-investors",
	Segment:    "seed-investors",
	Collection: database.SeedInvestors,
	SortField:  "name",
	New:        func() *SeedInvestor { return &SeedInvestor{} },
	SortKey:    func(s *SeedInvestor) string { return s.Name },
	Search: func(s *SeedInvestor) []string {
		return join([]string{s.Name, s.FirmName, s.Location, s.Description}, s.FocusIndustries, s.Stages)
	},
	Tags:     func(s *SeedInvestor) []string { return s.FocusIndustries },
	Location: func(s *SeedInvestor) string { return s.Location },
	Columns: []tabular.Column[*SeedInvestor]{
		required("Name", func(s *SeedInvestor) *string { return &s.Name }),
		text("Firm Name", func(s *SeedInvestor) *string { return &s.FirmName }),
		list("Focus Industries", func(s *SeedInvestor) *[]string { return &s.FocusIndustries }),
		list("Stages", func(s *SeedInvestor) *[]string { return &s.Stages }),
		text("Location", func(s *SeedInvestor) *string { return &s.Location }),
		text("Website", func(s *SeedInvestor) *string { return &s.Website }),
		text("Email", func(s *SeedInvestor) *string { return &s.Email }),
		text("LinkedIn", func(s *SeedInvestor) *string { return &s.LinkedIn }),
		text("Twitter", func(s *SeedInvestor) *string { return &s.Twitter }),
		text("Description", func(s *SeedInvestor) *string { return &s.Description }),
		text("Logo", func(s *SeedInvestor) *string { return &s.Logo }),
		number("Min Investment", func(s *SeedInvestor) *float64 { return &s.InvestmentRange.Min }),
		number("Max Investment", func(s *SeedInvestor) *float64 { return &s.InvestmentRange.Max }),
		text("Currency", func(s *SeedInvestor) *string { return &s.InvestmentRange.Currency }),
		companies("Invested Companies", func(s *SeedInvestor) *[]InvestedCompany { return &s.InvestedCompanies }),
	},
}

var AngelInvestors = Kind[*AngelInvestor]{
	Name:       "angel-investors",
	Segment:    "angel-investors",
	Collection: database.AngelInvestors,
	SortField:  "name",
	New:        func() *AngelInvestor { return &AngelInvestor{} },
	SortKey:    func(a *AngelInvestor) string { return a.Name },
	Search: func(a *AngelInvestor) []string {
		return join([]string{a.Name, a.Designation, a.Company, a.Location, a.Description}, a.FocusIndustries)
	},
	Tags:     func(a *AngelInvestor) []string { return a.FocusIndustries },
	Location: func(a *AngelInvestor) string { return a.Location },
	Columns: []tabular.Column[*AngelInvestor]{
		required("Name", func(a *AngelInvestor) *string { return &a.Name }),
		text("Designation", func(a *AngelInvestor) *string { return &a.Designation }),
		text("Company", func(a *AngelInvestor) *string { return &a.Company }),
		list("Focus Industries", func(a *AngelInvestor) *[]string { return &a.FocusIndustries }),
		text("Location", func(a *AngelInvestor) *string { return &a.Location }),
		text("Email", func(a *AngelInvestor) *string { return &a.Email }),
		text("LinkedIn", func(a *AngelInvestor) *string { return &a.LinkedIn }),
		text("Twitter", func(a *AngelInvestor) *string { return &a.Twitter }),
		text("Description", func(a *AngelInvestor) *string { return &a.Description }),
		text("Photo", func(a *AngelInvestor) *string { return &a.Photo }),
		number("Min Investment", func(a *AngelInvestor) *float64 { return &a.InvestmentRange.Min }),
		number("Max Investment", func(a *AngelInvestor) *float64 { return &a.InvestmentRange.Max }),
		text("Currency", func(a *AngelInvestor) *string { return &a.InvestmentRange.Currency }),
		companies("Invested Companies", func(a *AngelInvestor) *[]InvestedCompany { return &a.InvestedCompanies }),
	},
}

// join concatenates into a fresh slice so record fields are never aliased.
func join(head []string, lists ...[]string) []string {
	out := append([]string{}, head...)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func text[T any](header string, field func(T) *string) tabular.Column[T] {
	return tabular.Column[T]{
		Header: header,
		Get:    func(v T) string { return *field(v) },
		Set:    func(v T, s string) error { *field(v) = s; return nil },
	}
}

func required[T any](header string, field func(T) *string) tabular.Column[T] {
	c := text(header, field)
	c.Required = true
	return c
}

func list[T any](header string, field func(T) *[]string) tabular.Column[T] {
	return tabular.Column[T]{
		Header: header,
		Get:    func(v T) string { return tabular.JoinList(*field(v)) },
		Set:    func(v T, s string) error { *field(v) = tabular.SplitList(s); return nil },
	}
}

func integer[T any](header string, field func(T) *int) tabular.Column[T] {
	return tabular.Column[T]{
		Header: header,
		Get: func(v T) string {
			if n := *field(v); n != 0 {
				return strconv.Itoa(n)
			}
			return ""
		},
		Set: func(v T, s string) error {
			n, err := strconv.Atoi(s)
			if err != nil {
				return errors.New("must be a whole number")
			}
			*field(v) = n
			return nil
		},
	}
}

func number[T any](header string, field func(T) *float64) tabular.Column[T] {
	return tabular.Column[T]{
		Header: header,
		Get: func(v T) string {
			if f := *field(v); f != 0 {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
			return ""
		},
		Set: func(v T, s string) error {
			f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
			if err != nil {
				return errors.New("must be a number")
			}
			*field(v) = f
			return nil
		},
	}
}

// companies maps invested companies to a comma-joined list of names.
func companies[T any](header string, field func(T) *[]InvestedCompany) tabular.Column[T] {
	return tabular.Column[T]{
		Header: header,
		Get: func(v T) string {
			names := make([]string, 0, len(*field(v)))
			for _, c := range *field(v) {
				names = append(names, c.Name)
			}
			return tabular.JoinList(names)
		},
		Set: func(v T, s string) error {
			var out []InvestedCompany
			for _, n := range tabular.SplitList(s) {
				out = append(out, InvestedCompany{Name: n})
			}
			*field(v) = out
			return nil
		},
	}
}
