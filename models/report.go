package models

import (
	"github.com/shopspring/decimal"
)

type SalesReport struct {
	TotalSales        decimal.Decimal `json:"totalSales"`
	OrderCount        int             `json:"orderCount"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	TotalItemsSold    int             `json:"totalItemsSold"`
}

type ProductSales struct {
	ProductID    int64           `json:"productId"`
	Title        string          `json:"title"`
	QuantitySold int             `json:"quantitySold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type CategorySales struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
	Orders   int             `json:"orders"`
}

type DailySales struct {
	Date   string          `json:"date"` // YYYY-MM-DD
	Sales  decimal.Decimal `json:"sales"`
	Orders int             `json:"orders"`
}
