package policy

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tiendahq/tienda/pkg/auth"
)

func storeRoutes(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([]Rule{
		{Pattern: "/auth/**", Access: Public},
		{Pattern: "/users/createUser", Access: Public},
		{Pattern: "/users/all-users", Access: AllRoles, Roles: []string{"ADMIN"}},
		{Pattern: "/admin/**", Access: AllRoles, Roles: []string{"ADMIN"}},
		{Pattern: "/user/**", Access: AnyRole, Roles: []string{"USER", "ADMIN"}},
		{Pattern: "*", Access: Authenticated},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
	}{
		{"empty table", nil},
		{"no catch-all", []Rule{{Pattern: "/x", Access: Public}}},
		{"catch-all not last", []Rule{
			{Pattern: "*", Access: Authenticated},
			{Pattern: "/x", Access: Public},
		}},
		{"empty pattern", []Rule{
			{Pattern: "", Access: Public},
			{Pattern: "*", Access: Authenticated},
		}},
		{"unknown role", []Rule{
			{Pattern: "/x", Access: AnyRole, Roles: []string{"ROOT"}},
			{Pattern: "*", Access: Authenticated},
		}},
		{"roles on public rule", []Rule{
			{Pattern: "/x", Access: Public, Roles: []string{"USER"}},
			{Pattern: "*", Access: Authenticated},
		}},
		{"any without roles", []Rule{
			{Pattern: "/x", Access: AnyRole},
			{Pattern: "*", Access: Authenticated},
		}},
		{"unknown access kind", []Rule{
			{Pattern: "/x", Access: "sometimes"},
			{Pattern: "*", Access: Authenticated},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(tt.rules); err == nil {
				t.Error("invalid table compiled")
			}
		})
	}
}

func TestMatchFirstRuleWins(t *testing.T) {
	table := storeRoutes(t)

	tests := []struct {
		path string
		want string
	}{
		{"/auth/login", "/auth/**"},
		{"/auth", "/auth/**"},
		{"/users/createUser", "/users/createUser"},
		{"/users/all-users", "/users/all-users"},
		{"/user/42", "/user/**"},
		{"/user", "/user/**"},
		{"/admin/reports", "/admin/**"},
		{"/product", "*"},
		{"/users/7", "*"},
		{"/userdata", "*"},
	}
	for _, tt := range tests {
		if got := table.Match(tt.path); got.Pattern != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.path, got.Pattern, tt.want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	table := storeRoutes(t)
	user := &auth.Identity{Subject: "juanperez", Roles: []string{"USER"}}
	admin := &auth.Identity{Subject: "root", Roles: []string{"ADMIN"}}
	invited := &auth.Identity{Subject: "guest", Roles: []string{"INVITED"}}

	tests := []struct {
		name string
		path string
		id   *auth.Identity
		want Decision
	}{
		{"public route anonymous", "/auth/login", nil, Allow},
		{"public route authenticated", "/auth/login", user, Allow},
		{"user route with USER", "/user/42", user, Allow},
		{"user route with ADMIN", "/user/42", admin, Allow},
		{"user route with INVITED", "/user/42", invited, DenyForbidden},
		{"user route anonymous", "/user/42", nil, DenyUnauthenticated},
		{"admin route with USER", "/admin/reports", user, DenyForbidden},
		{"admin route with ADMIN", "/admin/reports", admin, Allow},
		{"all-users with ADMIN", "/users/all-users", admin, Allow},
		{"all-users with USER", "/users/all-users", user, DenyForbidden},
		{"catch-all anonymous", "/product", nil, DenyUnauthenticated},
		{"catch-all any identity", "/product", invited, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Evaluate(tt.path, tt.id); got != tt.want {
				t.Errorf("Evaluate(%q, %v) = %v, want %v", tt.path, tt.id, got, tt.want)
			}
		})
	}
}

func TestEvaluateCleansPath(t *testing.T) {
	table := storeRoutes(t)
	user := &auth.Identity{Subject: "juanperez", Roles: []string{"USER"}}

	tests := []struct {
		name string
		path string
		id   *auth.Identity
		want Decision
	}{
		{"double slash", "//users/all-users", user, DenyForbidden},
		{"dot segment", "/users/./all-users", user, DenyForbidden},
		{"dot-dot into admin", "/product/../admin/reports", user, DenyForbidden},
		{"trailing slash", "/users/all-users/", user, DenyForbidden},
		{"clean public unaffected", "/auth//login", nil, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Evaluate(tt.path, tt.id); got != tt.want {
				t.Errorf("Evaluate(%q, %v) = %v, want %v", tt.path, tt.id, got, tt.want)
			}
		})
	}
}

func TestEvaluateNoRoleHierarchy(t *testing.T) {
	table, err := NewTable([]Rule{
		{Pattern: "/only-users", Access: AnyRole, Roles: []string{"USER"}},
		{Pattern: "*", Access: Authenticated},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	admin := &auth.Identity{Subject: "root", Roles: []string{"ADMIN"}}
	if got := table.Evaluate("/only-users", admin); got != DenyForbidden {
		t.Errorf("ADMIN on USER-only route = %v, want DenyForbidden; roles have no hierarchy", got)
	}
}

func TestMiddlewareResponses(t *testing.T) {
	table := storeRoutes(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(table)(next)

	serve := func(path string, id *auth.Identity) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if id != nil {
			ctx, err := auth.Bind(req.Context(), id)
			if err != nil {
				t.Fatalf("Bind: %v", err)
			}
			req = req.WithContext(ctx)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	user := &auth.Identity{Subject: "juanperez", Roles: []string{"USER"}}

	if rec := serve("/user/42", user); rec.Code != http.StatusOK {
		t.Errorf("allowed route status = %d, want 200", rec.Code)
	}

	rec := serve("/admin/reports", user)
	if rec.Code != http.StatusForbidden {
		t.Errorf("forbidden route status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"type":"forbidden"`) {
		t.Errorf("forbidden body = %q", rec.Body.String())
	}

	rec = serve("/product", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated route status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"type":"unauthenticated"`) {
		t.Errorf("unauthenticated body = %q", rec.Body.String())
	}
}
