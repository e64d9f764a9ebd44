package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"wings-inventory/internal/controller"
	"wings-inventory/internal/middleware"
	"wings-inventory/internal/model"
	"wings-inventory/internal/router"
	"wings-inventory/internal/service"
	"wings-inventory/internal/theme"
)

// ScreenHandler serves screen state for the session-gated client and drives
// the per-session form and list controllers.
type ScreenHandler struct {
	gate      *router.Gate
	dashboard service.DashboardService
	theme     theme.Theme
}

func NewScreenHandler(gate *router.Gate, dashboard service.DashboardService, active theme.Theme) *ScreenHandler {
	return &ScreenHandler{gate: gate, dashboard: dashboard, theme: active}
}

// listController is the type-erased surface of controller.List.
type listController interface {
	Load(ctx context.Context) error
	Filter(query string)
	BeginEdit(id string) error
	SetEditField(name, value string) error
	CancelEdit()
	CommitEdit(ctx context.Context) error
	Remove(ctx context.Context, id string) error
	View() any
}

type listView[T controller.Item[T]] struct {
	*controller.List[T]
}

func (v listView[T]) View() any { return v.State() }

type screenAccess struct {
	create, update, remove string
}

var access = map[router.Screen]screenAccess{
	router.ScreenProductForm:    {model.PrivProductCreate, model.PrivProductUpdate, model.PrivProductDelete},
	router.ScreenProductList:    {model.PrivProductCreate, model.PrivProductUpdate, model.PrivProductDelete},
	router.ScreenUserManagement: {model.PrivUserCreate, model.PrivUserUpdate, model.PrivUserDelete},
}

// Show resolves the request path to a screen, or redirects.
// GET /, /signup, /product-form, /product-list, /user-management, and anything else
func (h *ScreenHandler) Show(c *fiber.Ctx) error {
	sess := middleware.Session(c)
	res := router.Resolve(c.Path(), sess != nil)
	if res.Redirect != "" {
		return c.Redirect(res.Redirect, fiber.StatusFound)
	}

	body := fiber.Map{
		"screen":        res.Screen,
		"authenticated": sess != nil,
		"theme":         h.theme,
	}
	if sess == nil {
		return c.JSON(body)
	}
	body["menu"] = router.Menu
	body["session"] = sess

	ws := h.gate.Workspace(sess)
	ctx := c.UserContext()
	switch res.Screen {
	case router.ScreenDashboard:
		stats, err := h.dashboard.GetDashboardStats(ctx)
		if err != nil {
			body["error"] = err.Error()
		} else {
			body["dashboard"] = stats
		}
	case router.ScreenProductForm:
		body["form"] = ws.ProductForm.State()
	case router.ScreenProductList:
		// the list fetches on every visit; failures show in its state
		_ = ws.ProductList.Load(ctx)
		body["list"] = ws.ProductList.State()
	case router.ScreenUserManagement:
		_ = ws.MemberList.Load(ctx)
		body["form"] = ws.MemberForm.State()
		body["list"] = ws.MemberList.State()
	}
	return c.JSON(body)
}

func (h *ScreenHandler) screen(c *fiber.Ctx) (router.Screen, *router.Workspace, error) {
	sess := middleware.Session(c)
	if sess == nil {
		return "", nil, service.ErrNoSession
	}
	screen := router.Screen(c.Params("screen"))
	if _, ok := access[screen]; !ok {
		return "", nil, fiber.ErrNotFound
	}
	return screen, h.gate.Workspace(sess), nil
}

func (h *ScreenHandler) form(c *fiber.Ctx) (*controller.Form, router.Screen, error) {
	screen, ws, err := h.screen(c)
	if err != nil {
		return nil, "", err
	}
	return ws.Form(screen), screen, nil
}

func (h *ScreenHandler) list(c *fiber.Ctx) (listController, router.Screen, error) {
	screen, ws, err := h.screen(c)
	if err != nil {
		return nil, "", err
	}
	switch screen {
	case router.ScreenProductList:
		return listView[model.Product]{ws.ProductList}, screen, nil
	case router.ScreenUserManagement:
		return listView[model.Member]{ws.MemberList}, screen, nil
	}
	return nil, "", fiber.ErrNotFound
}

func allowed(c *fiber.Ctx, privilege string) bool {
	sess := middleware.Session(c)
	return sess != nil && sess.HasPrivilege(privilege)
}

func forbidden(c *fiber.Ctx, privilege string) error {
	return c.Status(403).JSON(fiber.Map{
		"error": "Forbidden: requires '" + privilege + "' privilege",
	})
}

func screenError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return respondError(c, err)
}

// GET /api/v1/screens/:screen/form
func (h *ScreenHandler) FormState(c *fiber.Ctx) error {
	form, _, err := h.form(c)
	if err != nil {
		return screenError(c, err)
	}
	return c.JSON(form.State())
}

// PUT /api/v1/screens/:screen/form/fields
func (h *ScreenHandler) SetFormFields(c *fiber.Ctx) error {
	form, _, err := h.form(c)
	if err != nil {
		return screenError(c, err)
	}
	fields, err := parseFields(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	for name, value := range fields {
		if err := form.SetField(name, value); err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(form.State())
}

// POST /api/v1/screens/:screen/form/submit
func (h *ScreenHandler) SubmitForm(c *fiber.Ctx) error {
	form, screen, err := h.form(c)
	if err != nil {
		return screenError(c, err)
	}
	need := access[screen].create
	if form.State().Mode == controller.ModeUpdate {
		need = access[screen].update
	}
	if !allowed(c, need) {
		return forbidden(c, need)
	}
	if err := form.Submit(c.UserContext()); err != nil {
		status, msg := errorStatus(err)
		return c.Status(status).JSON(fiber.Map{"error": msg, "form": form.State()})
	}
	return c.JSON(form.State())
}

// POST /api/v1/screens/:screen/form/edit/:id
func (h *ScreenHandler) EditForm(c *fiber.Ctx) error {
	form, _, err := h.form(c)
	if err != nil {
		return screenError(c, err)
	}
	if err := form.Edit(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(form.State())
}

// POST /api/v1/screens/:screen/form/reset
func (h *ScreenHandler) ResetForm(c *fiber.Ctx) error {
	form, _, err := h.form(c)
	if err != nil {
		return screenError(c, err)
	}
	form.Reset()
	return c.JSON(form.State())
}

// GET /api/v1/screens/:screen/list
func (h *ScreenHandler) ListState(c *fiber.Ctx) error {
	list, _, err := h.list(c)
	if err != nil {
		return screenError(c, err)
	}
	return c.JSON(list.View())
}

// POST /api/v1/screens/:screen/list/load
func (h *ScreenHandler) LoadList(c *fiber.Ctx) error {
	list, _, err := h.list(c)
	if err != nil {
		return screenError(c, err)
	}
	if err := list.Load(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(list.View())
}

type filterRequest struct {
	Query string `json:"query"`
}

// PUT /api/v1/screens/:screen/list/filter
func (h *ScreenHandler) FilterList(c *fiber.Ctx) error {
	list, _, err := h.list(c)
	if err != nil {
		return screenError(c, err)
	}
	var req filterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	list.Filter(req.Query)
	return c.JSON(list.View())
}

// POST /api/v1/screens/:screen/list/edit/:id
func (h *ScreenHandler) BeginEdit(c *fiber.Ctx) error {
	list, screen, err := h.list(c)
	if err != nil {
		return screenError(c, err)
	}
	if need := access[screen].update; !allowed(c, need) {
		return forbidden(c, need)
	}
	if err := list.BeginEdit(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(list.View())
}

// PUT /api/v1/screens/:screen/list/edit
func (h *ScreenHandler) SetEditFields(c *fiber.Ctx) error {
	list, _, err := h.list(c)
	if err != nil {
		return screenError(c, err)
	}
	fields, err := parseFields(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	for name, value := range fields {
		if err := list.SetEditField(name, value); err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(list.View())
}

// POST /api/v1/screens/:screen/list/edit/commit
func (h *ScreenHandler) CommitEdit(c *fiber.Ctx) error {
	list, screen, err := h.list(c)
	if err != nil {
		return screenError(c, err)
	}
	if need := access[screen].update; !allowed(c, need) {
		return forbidden(c, need)
	}
	if err := list.CommitEdit(c.UserContext()); err != nil {
		status, msg := errorStatus(err)
		return c.Status(status).JSON(fiber.Map{"error": msg, "list": list.View()})
	}
	return c.JSON(list.View())
}

// DELETE /api/v1/screens/:screen/list/edit
func (h *ScreenHandler) CancelEdit(c *fiber.Ctx) error {
	list, _, err := h.list(c)
	if err != nil {
		return screenError(c, err)
	}
	list.CancelEdit()
	return c.JSON(list.View())
}

// DELETE /api/v1/screens/:screen/list/items/:id
func (h *ScreenHandler) RemoveItem(c *fiber.Ctx) error {
	list, screen, err := h.list(c)
	if err != nil {
		return screenError(c, err)
	}
	if need := access[screen].remove; !allowed(c, need) {
		return forbidden(c, need)
	}
	if err := list.Remove(c.UserContext(), c.Params("id")); err != nil {
		status, msg := errorStatus(err)
		return c.Status(status).JSON(fiber.Map{"error": msg, "list": list.View()})
	}
	return c.JSON(list.View())
}
