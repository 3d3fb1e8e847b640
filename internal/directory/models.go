package directory

import "time"

// Base carries the identity and timestamps shared by every directory record.
type Base struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Meta gives generic code access to the embedded Base.
func (b *Base) Meta() *Base { return b }

// Record is implemented by pointers to the directory record types.
type Record interface {
	Meta() *Base
}

// InvestmentRange is the ticket size an investor typically writes.
type InvestmentRange struct {
	Min      float64 `json:"min" bson:"min" validate:"gte=0"`
	Max      float64 `json:"max" bson:"max" validate:"omitempty,gtefield=Min"`
	Currency string  `json:"currency,omitempty" bson:"currency,omitempty"`
}

// InvestedCompany is a portfolio entry of an investor.
type InvestedCompany struct {
	Name    string `json:"name" bson:"name" validate:"required"`
	Sector  string `json:"sector,omitempty" bson:"sector,omitempty"`
	Year    int    `json:"year,omitempty" bson:"year,omitempty"`
	Website string `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
	Amount  string `json:"amount,omitempty" bson:"amount,omitempty"`
}

// Incubator is an incubator or accelerator programme.
type Incubator struct {
	Base            `bson:",inline"`
	CompanyName     string   `json:"companyName" bson:"companyName" validate:"required"`
	Sectors         []string `json:"sectors" bson:"sectors"`
	FocusIndustries []string `json:"focusIndustries" bson:"focusIndustries"`
	Location        string   `json:"location,omitempty" bson:"location,omitempty"`
	Website         string   `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
	Email           string   `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Phone           string   `json:"phone,omitempty" bson:"phone,omitempty"`
	LinkedIn        string   `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Twitter         string   `json:"twitter,omitempty" bson:"twitter,omitempty"`
	Description     string   `json:"description,omitempty" bson:"description,omitempty"`
	Logo            string   `json:"logo,omitempty" bson:"logo,omitempty"`
	FundingSupport  string   `json:"fundingSupport,omitempty" bson:"fundingSupport,omitempty"`
	ProgramDuration string   `json:"programDuration,omitempty" bson:"programDuration,omitempty"`
	EquityTaken     string   `json:"equityTaken,omitempty" bson:"equityTaken,omitempty"`
	ApplicationLink string   `json:"applicationLink,omitempty" bson:"applicationLink,omitempty" validate:"omitempty,url"`
	EstablishedYear int      `json:"establishedYear,omitempty" bson:"establishedYear,omitempty" validate:"omitempty,gte=1800,lte=2100"`
}

// SeedInvestor is a seed-stage fund.
type SeedInvestor struct {
	Base              `bson:",inline"`
	Name              string            `json:"name" bson:"name" validate:"required"`
	FirmName          string            `json:"firmName,omitempty" bson:"firmName,omitempty"`
	FocusIndustries   []string          `json:"focusIndustries" bson:"focusIndustries"`
	Stages            []string          `json:"stages" bson:"stages"`
	Location          string            `json:"location,omitempty" bson:"location,omitempty"`
	Website           string            `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
	Email             string            `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	LinkedIn          string            `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Twitter           string            `json:"twitter,omitempty" bson:"twitter,omitempty"`
	Description       string            `json:"description,omitempty" bson:"description,omitempty"`
	Logo              string            `json:"logo,omitempty" bson:"logo,omitempty"`
	InvestmentRange   InvestmentRange   `json:"investmentRange" bson:"investmentRange"`
	InvestedCompanies []InvestedCompany `json:"investedCompanies" bson:"investedCompanies" validate:"dive"`
}

// AngelInvestor is an individual investor.
type AngelInvestor struct {
	Base              `bson:",inline"`
	Name              string            `json:"name" bson:"name" validate:"required"`
	Designation       string            `json:"designation,omitempty" bson:"designation,omitempty"`
	Company           string            `json:"company,omitempty" bson:"company,omitempty"`
	FocusIndustries   []string          `json:"focusIndustries" bson:"focusIndustries"`
	Location          string            `json:"location,omitempty" bson:"location,omitempty"`
	Email             string            `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	LinkedIn          string            `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Twitter           string            `json:"twitter,omitempty" bson:"twitter,omitempty"`
	Description       string            `json:"description,omitempty" bson:"description,omitempty"`
	Photo             string            `json:"photo,omitempty" bson:"photo,omitempty"`
	InvestmentRange   InvestmentRange   `json:"investmentRange" bson:"investmentRange"`
	InvestedCompanies []InvestedCompany `json:"investedCompanies" bson:"investedCompanies" validate:"dive"`
}
