package directory

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleIncubators() []*Incubator {
	return []*Incubator{
		{CompanyName: "Alpha Labs", Sectors: []string{"Fintech"}, Location: "Bangalore, India"},
		{CompanyName: "Beta Hub", Sectors: []string{"Healthtech"}, FocusIndustries: []string{"AI"}, Location: "Mumbai"},
		{CompanyName: "Gamma Works", Sectors: []string{"Agritech"}, Location: "Bangalore", Description: "rural fintech pilots"},
	}
}

func names(items []*Incubator) []string {
	out := []string{}
	for _, i := range items {
		out = append(out, i.CompanyName)
	}
	return out
}

func apply(f Filter) []string {
	var out []*Incubator
	for _, i := range sampleIncubators() {
		if Incubators.Matches(f, i) {
			out = append(out, i)
		}
	}
	return names(out)
}

func TestMatches(t *testing.T) {
	cases := []struct {
		name string
		f    Filter
		want []string
	}{
		{"empty", Filter{}, []string{"Alpha Labs", "Beta Hub", "Gamma Works"}},
		{"query name", Filter{Query: "beta"}, []string{"Beta Hub"}},
		{"query hits description and tags", Filter{Query: "FINTECH"}, []string{"Alpha Labs", "Gamma Works"}},
		{"sector exact", Filter{Sectors: []string{"healthtech"}}, []string{"Beta Hub"}},
		{"sector any of", Filter{Sectors: []string{"AI", "Agritech"}}, []string{"Beta Hub", "Gamma Works"}},
		{"sector is not substring", Filter{Sectors: []string{"tech"}}, []string{}},
		{"location", Filter{Location: "bangalore"}, []string{"Alpha Labs", "Gamma Works"}},
		{"combined", Filter{Query: "a", Sectors: []string{"Fintech"}, Location: "india"}, []string{"Alpha Labs"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, apply(tc.f))
		})
	}
}

func TestFilterFromQuery(t *testing.T) {
	v, _ := url.ParseQuery("q=+alpha+&sector=Fintech,%20AI&sector=Edtech&location=Pune")
	f := FilterFromQuery(v)
	assert.Equal(t, "alpha", f.Query)
	assert.Equal(t, []string{"Fintech", "AI", "Edtech"}, f.Sectors)
	assert.Equal(t, "Pune", f.Location)
	assert.False(t, f.IsZero())
	assert.True(t, FilterFromQuery(url.Values{}).IsZero())
}
