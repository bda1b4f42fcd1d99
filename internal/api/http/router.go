package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stocklot/stocklot/internal/api/obs"
	"github.com/stocklot/stocklot/internal/api/service"
	"github.com/stocklot/stocklot/internal/api/store"
	"github.com/stocklot/stocklot/pkg/httpx"
	"github.com/stocklot/stocklot/pkg/jwtx"
	"github.com/stocklot/stocklot/pkg/slogx"

	_ "github.com/stocklot/stocklot/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens       *jwtx.Provider
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService       *service.AuthService
	UserService       *service.UserService
	RoleService       *service.RoleService
	PermissionService *service.PermissionService
	MenuService       *service.MenuService
}

func NewRouter(tokens *jwtx.Provider, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		tokens:       tokens,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Global chain: logging, metrics, then the silent authentication
	// filter. The filter never rejects; guards on individual routes do.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		obs.Instrument,
		httpx.Authenticate(r.tokens),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerRoles()
	r.registerPermissions()
	r.registerMenus()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			StockLot RBAC API
//	@version		0.1.0
//	@description	Role-based access control backend: stateless JWT sessions, role and
//	@description	permission management, and dynamic paged listing for admin UIs.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, UserService: r.UserService}

	// Credential endpoints get the strict limit to slow brute force.
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.RequireAuthenticated(),
		),
	)
	r.Mux.Handle("POST /api/auth/change-password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.RequireAuthenticated(),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /api/users",
		httpx.Chain(http.HandlerFunc(h.HandleList), httpx.RequireAuthority("USER_VIEW")))
	r.Mux.Handle("GET /api/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet), httpx.RequireAuthority("USER_VIEW")))
	r.Mux.Handle("POST /api/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate), httpx.RequireAuthority("USER_CREATE")))
	r.Mux.Handle("PUT /api/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate), httpx.RequireAuthority("USER_UPDATE")))
	r.Mux.Handle("POST /api/users/{id}/roles",
		httpx.Chain(http.HandlerFunc(h.HandleAssignRoles), httpx.RequireAuthority("USER_UPDATE")))
	r.Mux.Handle("DELETE /api/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete), httpx.RequireAuthority("USER_DELETE")))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RoleService: r.RoleService}

	r.Mux.Handle("GET /api/roles",
		httpx.Chain(http.HandlerFunc(h.HandleList), httpx.RequireAuthority("ROLE_VIEW")))
	r.Mux.Handle("GET /api/roles/all",
		httpx.Chain(http.HandlerFunc(h.HandleListAll), httpx.RequireAuthority("ROLE_VIEW")))
	r.Mux.Handle("GET /api/roles/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet), httpx.RequireAuthority("ROLE_VIEW")))
	r.Mux.Handle("POST /api/roles",
		httpx.Chain(http.HandlerFunc(h.HandleCreate), httpx.RequireAuthority("ROLE_CREATE")))
	r.Mux.Handle("PUT /api/roles/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate), httpx.RequireAuthority("ROLE_UPDATE")))
	r.Mux.Handle("POST /api/roles/{id}/permissions",
		httpx.Chain(http.HandlerFunc(h.HandleAssignPermissions), httpx.RequireAuthority("ROLE_UPDATE")))
	r.Mux.Handle("POST /api/roles/{id}/menus",
		httpx.Chain(http.HandlerFunc(h.HandleAssignMenus), httpx.RequireAuthority("ROLE_UPDATE")))
	r.Mux.Handle("DELETE /api/roles/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete), httpx.RequireAuthority("ROLE_DELETE")))
}

func (r *Router) registerPermissions() {
	h := &PermissionsHandler{PermissionService: r.PermissionService}

	r.Mux.Handle("GET /api/permissions",
		httpx.Chain(http.HandlerFunc(h.HandleList), httpx.RequireAuthority("PERMISSION_VIEW")))
	r.Mux.Handle("GET /api/permissions/all",
		httpx.Chain(http.HandlerFunc(h.HandleListAll), httpx.RequireAuthority("PERMISSION_VIEW")))
	r.Mux.Handle("GET /api/permissions/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet), httpx.RequireAuthority("PERMISSION_VIEW")))
	r.Mux.Handle("POST /api/permissions",
		httpx.Chain(http.HandlerFunc(h.HandleCreate), httpx.RequireAuthority("PERMISSION_CREATE")))
	r.Mux.Handle("PUT /api/permissions/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate), httpx.RequireAuthority("PERMISSION_UPDATE")))
	r.Mux.Handle("DELETE /api/permissions/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete), httpx.RequireAuthority("PERMISSION_DELETE")))
}

func (r *Router) registerMenus() {
	h := &MenusHandler{MenuService: r.MenuService}

	r.Mux.Handle("GET /api/menus",
		httpx.Chain(http.HandlerFunc(h.HandleList), httpx.RequireAuthority("MENU_VIEW")))
	r.Mux.Handle("GET /api/menus/tree",
		httpx.Chain(http.HandlerFunc(h.HandleTree), httpx.RequireAuthority("MENU_VIEW")))
	r.Mux.Handle("GET /api/menus/mine",
		httpx.Chain(http.HandlerFunc(h.HandleMine), httpx.RequireAuthenticated()))
	r.Mux.Handle("GET /api/menus/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet), httpx.RequireAuthority("MENU_VIEW")))
	r.Mux.Handle("POST /api/menus",
		httpx.Chain(http.HandlerFunc(h.HandleCreate), httpx.RequireAuthority("MENU_CREATE")))
	r.Mux.Handle("PUT /api/menus/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate), httpx.RequireAuthority("MENU_UPDATE")))
	r.Mux.Handle("DELETE /api/menus/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete), httpx.RequireAuthority("MENU_DELETE")))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", obs.Handler())
}
