package model

import "github.com/shopspring/decimal"

// DashboardStats is a point-in-time snapshot of the inventory.
type DashboardStats struct {
	TotalProducts int                 `json:"total_products"`
	LowStock      int                 `json:"low_stock"`
	TotalValue    decimal.Decimal     `json:"total_value"`
	Chart         []ChartPoint        `json:"chart"`
	Movement      []StockMovementData `json:"movement"`
	Products      []Product           `json:"products"`
}

type ChartPoint struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}
