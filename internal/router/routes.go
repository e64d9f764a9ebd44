// Package router decides which screen a path shows for the current session and
// owns the per-session screen workspaces.
package router

// Screen identifies one screen of the client.
type Screen string

const (
	ScreenSignIn         Screen = "signin"
	ScreenSignUp         Screen = "signup"
	ScreenDashboard      Screen = "dashboard"
	ScreenProductForm    Screen = "product-form"
	ScreenProductList    Screen = "product-list"
	ScreenUserManagement Screen = "user-management"
)

// Route paths.
const (
	PathRoot           = "/"
	PathSignUp         = "/signup"
	PathProductForm    = "/product-form"
	PathProductList    = "/product-list"
	PathUserManagement = "/user-management"
)

type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Menu is the navigation shown to an authenticated session. Sign out is
// always available next to it.
var Menu = []MenuItem{
	{Label: "Dashboard", Path: PathRoot},
	{Label: "Add Product", Path: PathProductForm},
	{Label: "Product List", Path: PathProductList},
	{Label: "User Management", Path: PathUserManagement},
}

// Resolution is either a screen to show or a path to redirect to.
type Resolution struct {
	Screen   Screen `json:"screen,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

var (
	publicRoutes = map[string]Screen{
		PathRoot:   ScreenSignIn,
		PathSignUp: ScreenSignUp,
	}
	privateRoutes = map[string]Screen{
		PathRoot:           ScreenDashboard,
		PathProductForm:    ScreenProductForm,
		PathProductList:    ScreenProductList,
		PathUserManagement: ScreenUserManagement,
	}
)

// Resolve maps a path to a screen. Unknown paths redirect to the root.
func Resolve(path string, authenticated bool) Resolution {
	routes := publicRoutes
	if authenticated {
		routes = privateRoutes
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if screen, ok := routes[path]; ok {
		return Resolution{Screen: screen}
	}
	return Resolution{Redirect: PathRoot}
}
