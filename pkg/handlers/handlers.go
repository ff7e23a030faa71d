// Package handlers wires the HTTP routes for the customer API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	"customerd/pkg/customer"
	"customerd/pkg/logger"
	"customerd/pkg/otel"
)

// Handlers holds the dependencies shared by every route.
type Handlers struct {
	log    *logger.Logger
	repo   customer.Repository
	tracer trace.Tracer
}

// New constructs the handler set. tracer may be nil, in which case spans
// are no-ops.
func New(log *logger.Logger, repo customer.Repository, tracer trace.Tracer) *Handlers {
	return &Handlers{log: log, repo: repo, tracer: tracer}
}

// Routes builds the router. The guid routes are registered before the
// collection routes: precedence among overlapping patterns is most specific
// first, so GET /customers/{guid} dispatches to get, never to list.
func (h *Handlers) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestMiddleware)

	// No matching pattern and a pattern match with the wrong method both
	// answer a bare 404.
	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound

	api := r.PathPrefix("/customers").Subrouter()
	api.HandleFunc("/{guid}", h.getCustomer).Methods(http.MethodGet)
	api.HandleFunc("/{guid}", h.updateCustomer).Methods(http.MethodPut)
	api.HandleFunc("/{guid}", h.deleteCustomer).Methods(http.MethodDelete)
	api.HandleFunc("", h.createCustomer).Methods(http.MethodPost)
	api.HandleFunc("", h.listCustomers).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	return r
}

// requestMiddleware tags each request with an id, attaches the tracer and
// logs one access line.
func (h *Handlers) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if h.tracer != nil {
			ctx = otel.InjectTracing(ctx, h.tracer)
		}
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		h.log.Info(ctx, "request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// listCustomers lists all customers.
// @Summary List customers
// @Produce json
// @Success 200 {array} customer.Customer
// @Router /customers [get]
func (h *Handlers) listCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listCustomers")
	defer span.End()

	customers, err := h.repo.List(ctx)
	if err != nil {
		h.log.Error(ctx, "list customers", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customers)
}

// createCustomer adds a new customer.
// @Summary Create customer
// @Accept json
// @Param customer body customer.Customer true "Customer"
// @Success 201
// @Failure 400 {string} string "malformed body"
// @Failure 409 {string} string "guid already exists"
// @Router /customers [post]
func (h *Handlers) createCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createCustomer")
	defer span.End()

	var c customer.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.repo.Create(ctx, c); err != nil {
		if errors.Is(err, customer.ErrExists) {
			w.WriteHeader(http.StatusConflict)
			return
		}
		h.log.Error(ctx, "create customer", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// getCustomer retrieves a customer by guid.
// @Summary Get customer
// @Produce json
// @Param guid path string true "Customer GUID"
// @Success 200 {object} customer.Customer
// @Failure 404
// @Router /customers/{guid} [get]
func (h *Handlers) getCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getCustomer")
	defer span.End()

	guid := mux.Vars(r)["guid"]
	c, err := h.repo.Get(ctx, guid)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.log.Error(ctx, "get customer", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

// updateCustomer overwrites an existing customer. The path guid identifies
// the target; any guid in the body is ignored.
// @Summary Update customer
// @Accept json
// @Param guid path string true "Customer GUID"
// @Param customer body customer.Customer true "Customer"
// @Success 200
// @Failure 400 {string} string "malformed body"
// @Failure 404
// @Router /customers/{guid} [put]
func (h *Handlers) updateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateCustomer")
	defer span.End()

	var c customer.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.GUID = mux.Vars(r)["guid"]
	if err := h.repo.Update(ctx, c); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.log.Error(ctx, "update customer", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// deleteCustomer removes a customer by guid.
// @Summary Delete customer
// @Param guid path string true "Customer GUID"
// @Success 204
// @Failure 404
// @Router /customers/{guid} [delete]
func (h *Handlers) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteCustomer")
	defer span.End()

	guid := mux.Vars(r)["guid"]
	if err := h.repo.Delete(ctx, guid); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.log.Error(ctx, "delete customer", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
