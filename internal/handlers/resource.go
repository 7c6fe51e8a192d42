package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/reviewfighters/reviewfighters-api/internal/authz"
	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"github.com/rs/zerolog"
)

// Resource is the storage contract behind a REST collection.
type Resource[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, item T) (T, error)
	Delete(ctx context.Context, id string) error
}

// ResourceHandler serves list/get/create/update/delete for one collection.
type ResourceHandler[T any] struct {
	name        string
	repo        Resource[T]
	ownership   *Ownership[T]
	afterCreate func(ctx context.Context, item T) error
	logger      zerolog.Logger
}

// Ownership scopes writes on a collection whose rows belong to a user.
// Callers holding a Privileged role act on any row; everyone else only on
// their own, and never as another user.
type Ownership[T any] struct {
	Owner      func(item *T) *string
	Privileged []models.Role
	// Protect restores fields only privileged callers may set. existing is
	// nil on create.
	Protect func(item *T, existing *T)
}

func NewResourceHandler[T any](name string, repo Resource[T], logger zerolog.Logger) *ResourceHandler[T] {
	return &ResourceHandler[T]{
		name:   name,
		repo:   repo,
		logger: logger.With().Str("handler", name).Logger(),
	}
}

// OwnedBy enables per-row ownership checks on create, update and delete.
func (h *ResourceHandler[T]) OwnedBy(o Ownership[T]) *ResourceHandler[T] {
	h.ownership = &o
	return h
}

// AfterCreate registers a hook run once an item has been stored. Hook
// failures are logged and do not fail the request.
func (h *ResourceHandler[T]) AfterCreate(fn func(ctx context.Context, item T) error) *ResourceHandler[T] {
	h.afterCreate = fn
	return h
}

func (h *ResourceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list")
		writeError(w, http.StatusInternalServerError, "Failed to list "+h.name)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ResourceHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}
	item, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, h.name+" not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to fetch")
		writeError(w, http.StatusInternalServerError, "Failed to fetch "+h.name)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var item T
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if h.ownership != nil {
		h.ownership.apply(r, &item, nil)
	}

	created, err := h.repo.Create(r.Context(), item)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to create "+h.name+": "+err.Error())
		return
	}
	if h.afterCreate != nil {
		if err := h.afterCreate(r.Context(), created); err != nil {
			h.logger.Warn().Err(err).Msg("post-create hook failed")
		}
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}
	var item T
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if h.ownership != nil {
		existing, ok := h.ownedRow(w, r, id)
		if !ok {
			return
		}
		h.ownership.apply(r, &item, &existing)
	}

	updated, err := h.repo.Update(r.Context(), id, item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, h.name+" not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to update "+h.name+": "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}
	if h.ownership != nil {
		if _, ok := h.ownedRow(w, r, id); !ok {
			return
		}
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, h.name+" not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to delete")
		writeError(w, http.StatusInternalServerError, "Failed to delete "+h.name)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ResourceHandler[T]) idFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeError(w, http.StatusBadRequest, h.name+" ID is required")
		return "", false
	}
	return id, true
}

// ownedRow loads the row behind id and answers 404 unless the caller may
// change it.
func (h *ResourceHandler[T]) ownedRow(w http.ResponseWriter, r *http.Request, id string) (T, bool) {
	existing, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, h.name+" not found")
		} else {
			h.logger.Error().Err(err).Str("id", id).Msg("failed to fetch")
			writeError(w, http.StatusInternalServerError, "Failed to fetch "+h.name)
		}
		var zero T
		return zero, false
	}
	if !h.ownership.privileged(r) {
		userID, _ := authz.UserIDFromRequest(r)
		if userID == "" || *h.ownership.Owner(&existing) != userID {
			writeError(w, http.StatusNotFound, h.name+" not found")
			var zero T
			return zero, false
		}
	}
	return existing, true
}

func (o *Ownership[T]) privileged(r *http.Request) bool {
	role, ok := authz.RoleFromRequest(r)
	return ok && models.HasAnyRole(role, o.Privileged...)
}

// apply fixes the owner of item and strips protected fields for
// non-privileged callers.
func (o *Ownership[T]) apply(r *http.Request, item *T, existing *T) {
	owner := o.Owner(item)
	privileged := o.privileged(r)

	switch {
	case existing != nil:
		*owner = *o.Owner(existing)
	case !privileged || strings.TrimSpace(*owner) == "":
		userID, _ := authz.UserIDFromRequest(r)
		*owner = userID
	}

	if !privileged && o.Protect != nil {
		o.Protect(item, existing)
	}
}
