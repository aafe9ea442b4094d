package models

const (
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// Plan is a purchasable access plan. Period selects the billing class that
// decides both the price column and the length of a paid window.
type Plan struct {
	ID           string `gorm:"primaryKey;size:50" json:"id"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	PriceMonthly *int64 `json:"price_monthly"`
	PriceYearly  *int64 `json:"price_yearly"`
	Period       string `gorm:"size:20;not null;default:'monthly'" json:"period"`
}

func (p Plan) IsYearly() bool {
	return p.Period == PeriodYearly
}

// Price returns the configured price for the plan's own period class.
func (p Plan) Price() int64 {
	price := p.PriceMonthly
	if p.IsYearly() {
		price = p.PriceYearly
	}
	if price == nil {
		return 0
	}
	return *price
}
