package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"wings-inventory/internal/events"
	"wings-inventory/internal/model"
	"wings-inventory/internal/repository"
	"wings-inventory/internal/store"
	"wings-inventory/pkg/validator"
)

// ErrInvalidInput reports a field value the service cannot store.
var ErrInvalidInput = errors.New("invalid input")

// ProductRules are the validator tags for each product field.
var ProductRules = map[string]string{
	model.FieldName:        "required",
	model.FieldDescription: "required",
	model.FieldCategory:    "required",
	model.FieldPrice:       "required,decimal",
	model.FieldQuantity:    "required,count",
}

type InventoryService interface {
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	CreateProduct(ctx context.Context, fields map[string]string, actor *model.Session) (*model.Product, error)
	// UpdateProduct writes only the fields present in the map.
	UpdateProduct(ctx context.Context, id string, fields map[string]string, actor *model.Session) error
	DeleteProduct(ctx context.Context, id string, actor *model.Session) error
	// GetTransactions lists recorded stock movements, newest first. An empty
	// productID lists all of them.
	GetTransactions(ctx context.Context, productID string) ([]model.Transaction, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	publisher   events.Publisher
}

// NewInventoryService records a stock transaction for every quantity change when
// txRepo is non-nil.
func NewInventoryService(pRepo repository.ProductRepository, txRepo repository.TransactionRepository, publisher events.Publisher) InventoryService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &inventoryService{productRepo: pRepo, txRepo: txRepo, publisher: publisher}
}

func (s *inventoryService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *inventoryService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *inventoryService) CreateProduct(ctx context.Context, fields map[string]string, actor *model.Session) (*model.Product, error) {
	for _, name := range model.ProductFields {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
		}
	}
	patch, err := productPatch(fields)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        cast.ToString(patch[model.FieldName]),
		Description: cast.ToString(patch[model.FieldDescription]),
		Category:    cast.ToString(patch[model.FieldCategory]),
		Price:       decimal.RequireFromString(cast.ToString(patch[model.FieldPrice])),
		Quantity:    cast.ToInt(patch[model.FieldQuantity]),
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.record(ctx, *product, 0, product.Quantity, "created", actor)
	s.publish("product_created", product.ID, productData(product), actor)
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id string, fields map[string]string, actor *model.Session) error {
	patch, err := productPatch(fields)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	var before *model.Product
	if _, ok := patch[model.FieldQuantity]; ok && s.txRepo != nil {
		if before, err = s.productRepo.FindByID(ctx, id); err != nil {
			return err
		}
	}
	if err := s.productRepo.Update(ctx, id, patch); err != nil {
		return err
	}
	if before != nil {
		after := before.WithValues(fields)
		s.record(ctx, after, before.Quantity, after.Quantity, "updated", actor)
	}

	s.publish("product_updated", id, patch, actor)
	return nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id string, actor *model.Session) error {
	var before *model.Product
	if s.txRepo != nil {
		p, err := s.productRepo.FindByID(ctx, id)
		switch {
		case err == nil:
			before = p
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	if before != nil {
		s.record(ctx, *before, before.Quantity, 0, "deleted", actor)
	}
	s.publish("product_deleted", id, nil, actor)
	return nil
}

func (s *inventoryService) GetTransactions(ctx context.Context, productID string) ([]model.Transaction, error) {
	if s.txRepo == nil {
		return []model.Transaction{}, nil
	}
	if productID == "" {
		return s.txRepo.FindAll(ctx)
	}
	return s.txRepo.FindByProduct(ctx, productID)
}

// record logs the movement from one quantity to another. The product write has
// already happened, so a failure here is logged and not returned.
func (s *inventoryService) record(ctx context.Context, p model.Product, from, to int, note string, actor *model.Session) {
	if s.txRepo == nil {
		return
	}
	tx, moved := model.MovementFor(p, from, to, note)
	if !moved {
		return
	}
	if actor != nil {
		tx.CreatedBy = actor.AccountID
	}
	if err := s.txRepo.Record(ctx, &tx); err != nil {
		zap.L().Warn("failed to record stock transaction",
			zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (s *inventoryService) publish(action, id string, data map[string]any, actor *model.Session) {
	s.publisher.Publish(events.Event{
		Type:   events.TypeStockUpdate,
		Action: action,
		ID:     id,
		Data:   data,
		User:   actorOf(actor),
	})
}

// productPatch validates the given product fields and converts them to their
// stored form. Unknown field names are rejected.
func productPatch(fields map[string]string) (store.Document, error) {
	patch := store.Document{}
	for name, raw := range fields {
		rules, ok := ProductRules[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidInput, name)
		}
		value := strings.TrimSpace(raw)
		if err := validator.ValidateVar(value, rules); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, name)
		}
		switch name {
		case model.FieldPrice:
			patch[name] = decimal.RequireFromString(value).String()
		case model.FieldQuantity:
			patch[name] = decimal.RequireFromString(value).IntPart()
		default:
			patch[name] = value
		}
	}
	return patch, nil
}

func productData(p *model.Product) map[string]any {
	return map[string]any{
		"name":     p.Name,
		"category": p.Category,
		"price":    p.Price.String(),
		"quantity": p.Quantity,
	}
}

func actorOf(sess *model.Session) *events.Actor {
	if sess == nil {
		return nil
	}
	return &events.Actor{ID: sess.AccountID, Email: sess.Email}
}
