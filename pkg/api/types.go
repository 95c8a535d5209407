package api

// Category groups products under a unique name.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog entry. Inactive products remain readable but
// cannot be ordered.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"category_id"`
	Stock       int     `json:"stock"`
	Active      bool    `json:"active"`
}

// OrderStatus is the lifecycle state of an order line.
type OrderStatus string

const (
	// OrderPending means the line is recorded but not paid.
	OrderPending OrderStatus = "PENDING"

	// OrderPaid means the line has been paid.
	OrderPaid OrderStatus = "PAID"

	// OrderCancelled means the line was cancelled before completion.
	OrderCancelled OrderStatus = "CANCELLED"
)

// ValidStatus reports whether s is one of the known order states.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderPaid, OrderCancelled:
		return true
	}
	return false
}

// OrderLine is a single product position ordered by a user.
type OrderLine struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	ProductID int64       `json:"product_id"`
	Amount    int         `json:"amount"`
	Status    OrderStatus `json:"status"`
}

// User is the public representation of an account. The password never
// appears here; it is accepted only through NewUser and stored hashed.
type User struct {
	ID        int64    `json:"id"`
	DNI       int      `json:"dni"`
	Username  string   `json:"username"`
	Firstname string   `json:"firstname"`
	Lastname  string   `json:"lastname"`
	Email     string   `json:"email"`
	Country   string   `json:"country"`
	Roles     []string `json:"roles"`
}

// NewUser carries the fields accepted when creating or updating an
// account. Roles are free-form names here; they are resolved against the
// closed role vocabulary at the service boundary.
type NewUser struct {
	DNI       int      `json:"dni"`
	Username  string   `json:"username"`
	Firstname string   `json:"firstname"`
	Lastname  string   `json:"lastname"`
	Email     string   `json:"email"`
	Country   string   `json:"country"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries the bearer token issued on successful login or
// registration.
type TokenResponse struct {
	Token string `json:"token"`
}
