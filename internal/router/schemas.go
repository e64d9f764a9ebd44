package router

import (
	"wings-inventory/internal/controller"
	"wings-inventory/internal/model"
)

var ProductSchema = controller.Schema{
	Entity: "product",
	Fields: []controller.Field{
		{Name: model.FieldName, Label: "Product Name"},
		{Name: model.FieldDescription, Label: "Description"},
		{Name: model.FieldCategory, Label: "Category"},
		{Name: model.FieldPrice, Label: "Price", Rules: "decimal"},
		{Name: model.FieldQuantity, Label: "Quantity", Rules: "count"},
	},
	Messages: controller.Messages{
		Created:      "Product added successfully!",
		Updated:      "Product updated successfully!",
		Deleted:      "Product deleted successfully!",
		CreateFailed: "Error adding product",
		UpdateFailed: "Error updating product",
		DeleteFailed: "Error deleting product",
		LoadFailed:   "Error fetching products",
	},
}

var MemberSchema = controller.Schema{
	Entity: "user",
	Fields: []controller.Field{
		{Name: model.FieldMemberName, Label: "Name"},
		{Name: model.FieldMemberEmail, Label: "Email", Rules: "email"},
		{Name: model.FieldMemberRole, Label: "Role", Rules: "oneof=MASTER_ADMIN ADMIN", Options: []string{model.RoleMasterAdmin, model.RoleAdmin}},
	},
	Messages: controller.Messages{
		Created:      "User added successfully",
		Updated:      "User updated successfully",
		Deleted:      "User deleted successfully",
		CreateFailed: "Error adding user",
		UpdateFailed: "Error updating user",
		DeleteFailed: "Error deleting user",
		LoadFailed:   "Error fetching users",
	},
}
