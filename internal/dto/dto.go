// dto.go
package dto

import (
	"time"

	"delivered-status-service/internal/repository"
)

// InitOrderRequest usado por la API y Rabbit para inicializar una orden
type InitOrderRequest struct {
	OrderID  string        `json:"orderId" binding:"required"`
	Number   string        `json:"number"`
	UserID   string        `json:"userId" binding:"required"`
	Status   string        `json:"status"`
	Currency string        `json:"currency"`
	Total    float64       `json:"total"`
	Billing  BillingDTO    `json:"billing"`
	Items    []LineItemDTO `json:"items"`
}

type BillingDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type LineItemDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

// BulkActionRequest es lo que manda el listado de órdenes.
type BulkActionRequest struct {
	Action   string   `json:"action" binding:"required"`
	OrderIDs []string `json:"orderIds" binding:"required"`
}

// OrderAction es un botón de acción de fila.
type OrderAction struct {
	Action string `json:"action"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

type BulkAction struct {
	Action string `json:"action"`
	Label  string `json:"label"`
}

type BulkItemResult struct {
	OrderID string `json:"orderId"`
	Result  string `json:"result"`
	Error   string `json:"error,omitempty"`
}

type BulkResult struct {
	Action  string           `json:"action"`
	Status  string           `json:"status"`
	Changed int              `json:"changed"`
	Results []BulkItemResult `json:"results"`
}

type StatusListEntry struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Count      int    `json:"count"`
	LabelCount string `json:"labelCount"`
}

type ReportResponse struct {
	Statuses   []string                 `json:"statuses"`
	OrderCount int                      `json:"orderCount"`
	GrossTotal float64                  `json:"grossTotal"`
	Rows       []repository.StatusTotal `json:"rows"`
}

type OrderResponse struct {
	OrderID   string        `json:"orderId"`
	Number    string        `json:"number"`
	UserID    string        `json:"userId"`
	Status    string        `json:"status"`
	Label     string        `json:"label"`
	Paid      bool          `json:"paid"`
	Actions   []OrderAction `json:"actions"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
