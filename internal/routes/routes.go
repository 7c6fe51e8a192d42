package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/reviewfighters/reviewfighters-api/internal/authz"
	"github.com/reviewfighters/reviewfighters-api/internal/handlers"
	"github.com/reviewfighters/reviewfighters-api/internal/models"
)

// crudHandler is satisfied by every handlers.ResourceHandler instantiation.
type crudHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Notifications *handlers.NotificationHandler
	Health        http.HandlerFunc

	Users        crudHandler
	Profiles     crudHandler
	Reviews      crudHandler
	Affiliates   crudHandler
	StaffMembers crudHandler
}

// NewRouter sets up the API routes
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	health := h.Health
	if health == nil {
		health = handlers.HealthCheck(nil)
	}
	router.HandleFunc("/health", health).Methods(http.MethodGet)

	// Public auth endpoints
	router.HandleFunc("/api/signup", h.Auth.SignUp).Methods(http.MethodPost)
	router.HandleFunc("/api/login", h.Auth.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(h.Auth.JWTMiddleware)

	api.HandleFunc("/navigation", handlers.Navigation).Methods(http.MethodGet)

	mountNotifications(api, h.Notifications)

	// Collections are gated by the dashboard page that manages them.
	mountResource(api, "/users", h.Users,
		authz.RequirePage("/admin/users"), authz.RequirePage("/admin/users"))
	mountResource(api, "/user-profiles", h.Profiles, open, open)
	mountResource(api, "/reviews", h.Reviews, open, open)
	mountResource(api, "/affiliates", h.Affiliates,
		authz.RequirePage("/admin/affiliates", "/affiliate/account"),
		authz.RequirePage("/admin/affiliates", "/affiliate/account"))
	mountResource(api, "/staff-members", h.StaffMembers,
		authz.RequirePage("/owner/staff", "/staff/profile"), authz.RequirePage("/owner/staff"))

	return router
}

func mountNotifications(api *mux.Router, n *handlers.NotificationHandler) {
	r := api.PathPrefix("/notifications").Subrouter()

	r.HandleFunc("", n.List).Methods(http.MethodGet)
	r.HandleFunc("", n.ClearAll).Methods(http.MethodDelete)
	r.Handle("", authz.RequireRoleHandler(http.HandlerFunc(n.Create),
		models.RoleStaff, models.RoleAdmin, models.RoleOwner)).Methods(http.MethodPost)

	r.HandleFunc("/unread-count", n.UnreadCount).Methods(http.MethodGet)
	r.HandleFunc("/read-all", n.MarkAllRead).Methods(http.MethodPost)
	r.HandleFunc("/stream", n.Stream).Methods(http.MethodGet)
	r.HandleFunc("/preferences", n.Preferences).Methods(http.MethodGet)
	r.HandleFunc("/preferences", n.UpdatePreferences).Methods(http.MethodPut)
	r.HandleFunc("/permission", n.Permission).Methods(http.MethodGet)
	r.HandleFunc("/permission", n.RequestPermission).Methods(http.MethodPost)

	r.HandleFunc("/{id}/read", n.MarkRead).Methods(http.MethodPut)
	r.HandleFunc("/{id}", n.Delete).Methods(http.MethodDelete)
}

// mountResource registers the five CRUD routes under path, wrapping reads
// and writes in their own guards.
func mountResource(api *mux.Router, path string, h crudHandler, read, write func(http.Handler) http.Handler) {
	api.Handle(path, read(http.HandlerFunc(h.List))).Methods(http.MethodGet)
	api.Handle(path, write(http.HandlerFunc(h.Create))).Methods(http.MethodPost)
	api.Handle(path+"/{id}", read(http.HandlerFunc(h.Get))).Methods(http.MethodGet)
	api.Handle(path+"/{id}", write(http.HandlerFunc(h.Update))).Methods(http.MethodPut)
	api.Handle(path+"/{id}", write(http.HandlerFunc(h.Delete))).Methods(http.MethodDelete)
}

// open admits any authenticated caller.
func open(next http.Handler) http.Handler { return next }
