package routes

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/reviewfighters/reviewfighters-api/internal/handlers"
	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"github.com/reviewfighters/reviewfighters-api/internal/navigation"
	"github.com/reviewfighters/reviewfighters-api/internal/notification"
	"github.com/reviewfighters/reviewfighters-api/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "routes-secret"

// emptyRepo serves an empty collection for any resource type.
type emptyRepo[T any] struct{}

func (emptyRepo[T]) List(context.Context) ([]T, error) { return []T{}, nil }

func (emptyRepo[T]) Get(context.Context, string) (T, error) {
	var zero T
	return zero, sql.ErrNoRows
}

func (emptyRepo[T]) Create(_ context.Context, item T) (T, error) { return item, nil }

func (emptyRepo[T]) Update(context.Context, string, T) (T, error) {
	var zero T
	return zero, sql.ErrNoRows
}

func (emptyRepo[T]) Delete(context.Context, string) error { return sql.ErrNoRows }

type noUsers struct {
	emptyRepo[models.User]
}

func (noUsers) GetByEmail(context.Context, string) (models.User, error) {
	return models.User{}, sql.ErrNoRows
}

func (noUsers) Authenticate(context.Context, string, string) (models.User, error) {
	return models.User{}, repository.ErrInvalidCredentials
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := notification.NewStore(context.Background(), notification.Options{Logger: zerolog.Nop()})
	t.Cleanup(store.Close)
	logger := zerolog.Nop()

	return NewRouter(Handlers{
		Auth:          handlers.NewAuthHandler(noUsers{}, nil, secret, logger),
		Notifications: handlers.NewNotificationHandler(store, logger),

		Users:        handlers.NewResourceHandler[models.User]("user", noUsers{}, logger),
		Profiles:     handlers.NewResourceHandler[models.UserProfile]("user profile", emptyRepo[models.UserProfile]{}, logger),
		Reviews:      handlers.NewResourceHandler[models.Review]("review", emptyRepo[models.Review]{}, logger),
		Affiliates:   handlers.NewResourceHandler[models.Affiliate]("affiliate", emptyRepo[models.Affiliate]{}, logger),
		StaffMembers: handlers.NewResourceHandler[models.StaffMember]("staff member", emptyRepo[models.StaffMember]{}, logger),
	})
}

func request(t *testing.T, router http.Handler, role models.Role, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if role != "" {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "user-" + strings.ToLower(string(role)),
			"role": string(role),
			"exp":  time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(secret))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	router := newTestRouter(t)

	rec := request(t, router, "", http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = request(t, router, "", http.MethodPost, "/api/login", `{"email":"x@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{"/api/navigation", "/api/reviews", "/api/notifications"} {
		assert.Equal(t, http.StatusUnauthorized, request(t, router, "", http.MethodGet, path, "").Code, path)
	}
}

func TestResourceRoleGates(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		role   models.Role
		method string
		path   string
		want   int
	}{
		{models.RoleUser, http.MethodGet, "/api/users", http.StatusForbidden},
		{models.RoleStaff, http.MethodGet, "/api/users", http.StatusForbidden},
		{models.RoleAdmin, http.MethodGet, "/api/users", http.StatusOK},
		{models.RoleOwner, http.MethodGet, "/api/users", http.StatusOK},
		{models.RoleAdmin, http.MethodGet, "/api/users/missing", http.StatusNotFound},

		{models.RoleUser, http.MethodGet, "/api/reviews", http.StatusOK},
		{models.RoleSales, http.MethodGet, "/api/user-profiles", http.StatusOK},
		{models.RoleUser, http.MethodPost, "/api/reviews", http.StatusCreated},
		{models.RoleUser, http.MethodDelete, "/api/reviews/missing", http.StatusNotFound},

		{models.RoleAffiliate, http.MethodGet, "/api/affiliates", http.StatusOK},
		{models.RoleUser, http.MethodGet, "/api/affiliates", http.StatusForbidden},
		{models.RoleSales, http.MethodPost, "/api/affiliates", http.StatusForbidden},

		{models.RoleStaff, http.MethodGet, "/api/staff-members", http.StatusOK},
		{models.RoleStaff, http.MethodPost, "/api/staff-members", http.StatusForbidden},
		{models.RoleOwner, http.MethodPost, "/api/staff-members", http.StatusCreated},
		{models.RoleAdmin, http.MethodPost, "/api/staff-members", http.StatusCreated},
		{models.RoleSales, http.MethodGet, "/api/staff-members", http.StatusForbidden},
		{models.RoleAffiliate, http.MethodGet, "/api/staff-members", http.StatusForbidden},

		{models.RoleSales, http.MethodGet, "/api/users", http.StatusForbidden},
		{models.RoleAffiliate, http.MethodPost, "/api/users", http.StatusForbidden},
		{models.RoleStaff, http.MethodGet, "/api/affiliates", http.StatusForbidden},
		{models.RoleAdmin, http.MethodPost, "/api/affiliates", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+" "+tt.method+" "+tt.path, func(t *testing.T) {
			body := ""
			if tt.method == http.MethodPost {
				body = `{}`
			}
			assert.Equal(t, tt.want, request(t, router, tt.role, tt.method, tt.path, body).Code)
		})
	}
}

func TestNotificationRoutes(t *testing.T) {
	router := newTestRouter(t)

	rec := request(t, router, models.RoleUser, http.MethodPost, "/api/notifications", `{"title":"Hi"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = request(t, router, models.RoleAdmin, http.MethodPost, "/api/notifications", `{"title":"Maintenance"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = request(t, router, models.RoleUser, http.MethodGet, "/api/notifications/unread-count", "")
	assert.JSONEq(t, `{"unread_count":1}`, rec.Body.String())

	rec = request(t, router, models.RoleUser, http.MethodPost, "/api/notifications/read-all", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNavigationRoute(t *testing.T) {
	router := newTestRouter(t)

	rec := request(t, router, models.RoleSales, http.MethodGet, "/api/navigation", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Role     models.Role          `json:"role"`
		Sections []navigation.Section `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.RoleSales, body.Role)
	assert.Equal(t, navigation.For(models.RoleSales), body.Sections)
}

// Every collection guard follows the navigation table: a role reaches a
// collection exactly when its menu holds one of the managing pages.
func TestResourceGatesFollowNavigation(t *testing.T) {
	router := newTestRouter(t)

	pages := map[string][]string{
		"/api/users":         {"/admin/users"},
		"/api/affiliates":    {"/admin/affiliates", "/affiliate/account"},
		"/api/staff-members": {"/owner/staff", "/staff/profile"},
	}
	for path, destinations := range pages {
		for _, role := range models.Roles() {
			want := http.StatusForbidden
			for _, d := range destinations {
				if navigation.CanAccess(role, d) {
					want = http.StatusOK
				}
			}
			assert.Equal(t, want, request(t, router, role, http.MethodGet, path, "").Code, "%s %s", role, path)
		}
	}
}
