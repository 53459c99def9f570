package orders

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Status tracks an order through its lifecycle. Orders sit in the basket
// until the customer submits them to the pharmacy.
type Status string

const (
	StatusInBasket  Status = "IN_BASKET"
	StatusSubmitted Status = "SUBMITTED"
)

// Order is a repeat-prescription order owned by exactly one customer.
type Order struct {
	ID          uuid.UUID   `json:"order_id" db:"id"`
	CustomerID  uuid.UUID   `json:"customer_id" db:"customer_id"`
	Status      Status      `json:"status" db:"status"`
	CreatedOn   time.Time   `json:"created_on" db:"created_on"`
	SubmittedOn *time.Time  `json:"submitted_on,omitempty" db:"submitted_on"`
	Lines       []OrderLine `json:"lines,omitempty" db:"-"`
}

// OrderLine links one drug to an order. DrugName is joined in on read.
type OrderLine struct {
	ID       uuid.UUID `json:"order_line_id" db:"id"`
	OrderID  uuid.UUID `json:"order_id" db:"order_id"`
	DrugID   uuid.UUID `json:"drug_id" db:"drug_id"`
	DrugName string    `json:"drug_name" db:"drug_name"`
	Quantity int       `json:"quantity" db:"quantity"`
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the row offset for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
