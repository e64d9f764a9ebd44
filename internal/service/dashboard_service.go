package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"wings-inventory/internal/model"
	"wings-inventory/internal/repository"
)

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*model.DashboardStats, error)
}

// MovementWindow is how far back the dashboard's stock movement chart reaches.
const MovementWindow = 7 * 24 * time.Hour

type dashboardService struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	lowStock    int
	now         func() time.Time
}

// NewDashboardService counts products with quantity below lowStock as low on
// stock. txRepo may be nil, leaving the movement chart empty.
func NewDashboardService(productRepo repository.ProductRepository, txRepo repository.TransactionRepository, lowStock int) DashboardService {
	return &dashboardService{productRepo: productRepo, txRepo: txRepo, lowStock: lowStock, now: time.Now}
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{
		TotalProducts: len(products),
		TotalValue:    decimal.Zero,
		Chart:         make([]model.ChartPoint, 0, len(products)),
		Movement:      []model.StockMovementData{},
		Products:      products,
	}
	for _, p := range products {
		if p.Quantity < s.lowStock {
			stats.LowStock++
		}
		stats.TotalValue = stats.TotalValue.Add(p.Value())
		stats.Chart = append(stats.Chart, model.ChartPoint{Name: p.Name, Quantity: p.Quantity})
	}

	if s.txRepo != nil {
		end := s.now()
		movement, err := s.txRepo.GetStockMovement(ctx, end.Add(-MovementWindow), end)
		if err != nil {
			return nil, err
		}
		stats.Movement = movement
	}
	return stats, nil
}
