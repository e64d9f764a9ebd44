package handler

import (
	"github.com/gocarina/gocsv"
	"github.com/gofiber/fiber/v2"

	"wings-inventory/internal/middleware"
	"wings-inventory/internal/service"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

type productCSVRow struct {
	ID          string `csv:"id"`
	Name        string `csv:"name"`
	Description string `csv:"description"`
	Category    string `csv:"category"`
	Price       string `csv:"price"`
	Quantity    int    `csv:"quantity"`
	Value       string `csv:"value"`
}

// GET /api/v1/products
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// GET /api/v1/products/:id
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	fields, err := parseFields(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	product, err := h.service.CreateProduct(c.UserContext(), fields, middleware.Session(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	fields, err := parseFields(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	id := c.Params("id")
	if err := h.service.UpdateProduct(c.UserContext(), id, fields, middleware.Session(c)); err != nil {
		return respondError(c, err)
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DELETE /api/v1/products/:id
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id"), middleware.Session(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// ExportProducts writes the product table as CSV
// GET /api/v1/products/export
func (h *InventoryHandler) ExportProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	rows := make([]productCSVRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, productCSVRow{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Price:       p.Price.StringFixed(2),
			Quantity:    p.Quantity,
			Value:       p.Value().StringFixed(2),
		})
	}
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.SendString(out)
}

// GET /api/v1/transactions
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	txs, err := h.service.GetTransactions(c.UserContext(), c.Query("product_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txs)
}

// GET /api/v1/products/:id/transactions
func (h *InventoryHandler) GetProductTransactions(c *fiber.Ctx) error {
	txs, err := h.service.GetTransactions(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txs)
}
