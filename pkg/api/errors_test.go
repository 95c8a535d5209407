package api

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	e := NewInvalidRequestError("amount", "must be at least 1")
	want := "invalid_request: must be at least 1 (param: amount)"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	e = NewNotFoundError("product 42 not found")
	want = "not_found: product 42 not found"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestAPIError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *APIError
		want int
	}{
		{NewInvalidRequestError("", "bad"), http.StatusBadRequest},
		{NewUnauthenticatedError("no identity"), http.StatusUnauthorized},
		{NewForbiddenError("insufficient role"), http.StatusForbidden},
		{NewNotFoundError("gone"), http.StatusNotFound},
		{NewConflictError("duplicate"), http.StatusConflict},
		{NewServerError("oops"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.err.Type, got, tt.want)
		}
	}
}

func TestErrorResponse_JSON(t *testing.T) {
	resp := ErrorResponse{Error: NewForbiddenError("insufficient role")}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"error":{"type":"forbidden","message":"insufficient role"}}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderPaid, OrderCancelled} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false, want true", s)
		}
	}
	if ValidStatus("SHIPPED") {
		t.Error("ValidStatus(SHIPPED) = true, want false")
	}
}
