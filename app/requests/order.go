package requests

import "github.com/shopspring/decimal"

type CreateOrder struct {
	Amount   *float64 `json:"amount"   validate:"required,gte=0.01,lt=10000000000"`
	Item     string   `json:"item"     validate:"required,min=1,max=255"`
	Currency string   `json:"currency" validate:"omitempty,len=3,alpha,uppercase"`
}

func (r CreateOrder) AmountDecimal() decimal.Decimal {
	return decimal.NewFromFloat(*r.Amount)
}

type UpdateOrder struct {
	Amount   *float64 `json:"amount"   validate:"omitempty,gte=0.01,lt=10000000000"`
	Currency *string  `json:"currency" validate:"omitempty,len=3,alpha,uppercase"`
	Item     *string  `json:"item"     validate:"omitempty,min=1,max=255"`
	Status   *string  `json:"status"   validate:"omitempty,oneof=PENDING COMPLETED CANCELLED"`
}
