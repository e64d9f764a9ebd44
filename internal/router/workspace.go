package router

import (
	"context"
	"time"

	"wings-inventory/internal/controller"
	"wings-inventory/internal/model"
	"wings-inventory/internal/service"
)

// Workspace holds the screen controllers of one session.
type Workspace struct {
	SessionID   string
	ProductForm *controller.Form
	ProductList *controller.List[model.Product]
	MemberForm  *controller.Form
	MemberList  *controller.List[model.Member]
}

func newWorkspace(sess model.Session, inv service.InventoryService, members service.MemberService, flashTTL time.Duration) *Workspace {
	products := productSource{svc: inv, actor: &sess}
	users := memberSource{svc: members, actor: &sess}
	return &Workspace{
		SessionID:   sess.ID,
		ProductForm: controller.NewForm(ProductSchema, products, flashTTL),
		ProductList: controller.NewList[model.Product](ProductSchema, products, flashTTL),
		MemberForm:  controller.NewForm(MemberSchema, users, flashTTL),
		MemberList:  controller.NewList[model.Member](MemberSchema, users, flashTTL),
	}
}

// Form returns the form of a screen, or nil when the screen has none.
func (w *Workspace) Form(screen Screen) *controller.Form {
	switch screen {
	case ScreenProductForm, ScreenProductList:
		return w.ProductForm
	case ScreenUserManagement:
		return w.MemberForm
	}
	return nil
}

// Close cancels in-flight calls and stops every timer of the workspace.
func (w *Workspace) Close() {
	w.ProductForm.Close()
	w.ProductList.Close()
	w.MemberForm.Close()
	w.MemberList.Close()
}

type productSource struct {
	svc   service.InventoryService
	actor *model.Session
}

func (s productSource) Create(ctx context.Context, values map[string]string) error {
	_, err := s.svc.CreateProduct(ctx, values, s.actor)
	return err
}

func (s productSource) Update(ctx context.Context, id string, values map[string]string) error {
	return s.svc.UpdateProduct(ctx, id, values, s.actor)
}

func (s productSource) Load(ctx context.Context, id string) (map[string]string, error) {
	p, err := s.svc.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.FormValues(), nil
}

func (s productSource) List(ctx context.Context) ([]model.Product, error) {
	return s.svc.GetAllProducts(ctx)
}

func (s productSource) Delete(ctx context.Context, id string) error {
	return s.svc.DeleteProduct(ctx, id, s.actor)
}

type memberSource struct {
	svc   service.MemberService
	actor *model.Session
}

func (s memberSource) Create(ctx context.Context, values map[string]string) error {
	_, err := s.svc.CreateMember(ctx, values, s.actor)
	return err
}

func (s memberSource) Update(ctx context.Context, id string, values map[string]string) error {
	return s.svc.UpdateMember(ctx, id, values, s.actor)
}

func (s memberSource) Load(ctx context.Context, id string) (map[string]string, error) {
	m, err := s.svc.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.FormValues(), nil
}

func (s memberSource) List(ctx context.Context) ([]model.Member, error) {
	return s.svc.GetAllMembers(ctx)
}

func (s memberSource) Delete(ctx context.Context, id string) error {
	return s.svc.DeleteMember(ctx, id, s.actor)
}
