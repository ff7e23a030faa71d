package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"customerd/pkg/customer"
	"customerd/pkg/customer/memory"
	"customerd/pkg/logger"
)

func newTestRouter() (http.Handler, *memory.Repository) {
	repo := memory.New()
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	return New(log, repo, nil).Routes(), repo
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCustomerLifecycle(t *testing.T) {
	h, _ := newTestRouter()

	body := `{"guid":"g1","first_name":"A","last_name":"B","email":"a@b.com","address":"X"}`
	if w := do(t, h, http.MethodPost, "/customers", body); w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}

	w := do(t, h, http.MethodGet, "/customers/g1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var got customer.Customer
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := customer.Customer{GUID: "g1", FirstName: "A", LastName: "B", Email: "a@b.com", Address: "X"}
	if got != want {
		t.Fatalf("get mismatch: %+v", got)
	}

	update := `{"guid":"g1","first_name":"A","last_name":"C","email":"a@b.com","address":"X"}`
	if w := do(t, h, http.MethodPut, "/customers/g1", update); w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", w.Code)
	}
	w = do(t, h, http.MethodGet, "/customers/g1", "")
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode after update: %v", err)
	}
	if got.LastName != "C" {
		t.Fatalf("update not visible: %+v", got)
	}

	if w := do(t, h, http.MethodDelete, "/customers/g1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/customers/g1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestListCustomers(t *testing.T) {
	h, _ := newTestRouter()

	w := do(t, h, http.MethodGet, "/customers", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Fatalf("expected empty array, got %q", got)
	}

	do(t, h, http.MethodPost, "/customers", `{"guid":"a"}`)
	do(t, h, http.MethodPost, "/customers", `{"guid":"b"}`)

	w = do(t, h, http.MethodGet, "/customers", "")
	var list []customer.Customer
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 || list[0].GUID != "a" || list[1].GUID != "b" {
		t.Fatalf("expected [a b] in order, got %+v", list)
	}
}

func TestCreateConflict(t *testing.T) {
	h, _ := newTestRouter()

	body := `{"guid":"g1"}`
	if w := do(t, h, http.MethodPost, "/customers", body); w.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/customers", body); w.Code != http.StatusConflict {
		t.Fatalf("second create: expected 409, got %d", w.Code)
	}
}

func TestCreateBadBody(t *testing.T) {
	h, repo := newTestRouter()

	if w := do(t, h, http.MethodPost, "/customers", "{not json"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	list, _ := repo.List(context.Background())
	if len(list) != 0 {
		t.Fatalf("bad body reached the store: %+v", list)
	}
}

func TestUpdateBadBody(t *testing.T) {
	h, _ := newTestRouter()
	if w := do(t, h, http.MethodPut, "/customers/g1", "{not json"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpdateMissing(t *testing.T) {
	h, _ := newTestRouter()
	if w := do(t, h, http.MethodPut, "/customers/nope", `{"first_name":"A"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteMissing(t *testing.T) {
	h, _ := newTestRouter()
	if w := do(t, h, http.MethodDelete, "/customers/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestPathGUIDAuthoritative(t *testing.T) {
	h, _ := newTestRouter()

	do(t, h, http.MethodPost, "/customers", `{"guid":"g1","first_name":"A"}`)

	// Body claims a different guid; the path wins.
	if w := do(t, h, http.MethodPut, "/customers/g1", `{"guid":"other","first_name":"Z"}`); w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", w.Code)
	}
	w := do(t, h, http.MethodGet, "/customers/g1", "")
	var got customer.Customer
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.GUID != "g1" || got.FirstName != "Z" {
		t.Fatalf("path guid not authoritative: %+v", got)
	}
	if w := do(t, h, http.MethodGet, "/customers/other", ""); w.Code != http.StatusNotFound {
		t.Fatalf("phantom record under body guid: %d", w.Code)
	}
}

func TestRoutePrecedence(t *testing.T) {
	h, _ := newTestRouter()

	do(t, h, http.MethodPost, "/customers", `{"guid":"abc-123","first_name":"A"}`)

	// A guid path must dispatch to get, not to list, even though /customers
	// is a prefix of it.
	w := do(t, h, http.MethodGet, "/customers/abc-123", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got customer.Customer
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("expected a single object, got %q: %v", w.Body.String(), err)
	}
	if got.GUID != "abc-123" {
		t.Fatalf("wrong record: %+v", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestRouter()
	if w := do(t, h, http.MethodGet, "/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := do(t, h, http.MethodPatch, "/customers/g1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for wrong method, got %d", w.Code)
	}
}
