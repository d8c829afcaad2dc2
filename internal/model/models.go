// models.go
package model

import "time"

// Tipo de registro de las órdenes de la tienda.
const RecordTypeShopOrder = "shop_order"

type Order struct {
	OrderID    string  `bson:"order_id" json:"orderId"`
	Number     string  `bson:"number" json:"number"`
	UserID     string  `bson:"user_id" json:"userId"`
	RecordType string  `bson:"record_type" json:"recordType"`
	Status     string  `bson:"status" json:"status"` // estado actual, sin prefijo
	Currency   string  `bson:"currency" json:"currency"`
	Total      float64 `bson:"total" json:"total"`

	// Documentos viejos guardan el email en este campo plano.
	LegacyBillingEmail string  `bson:"billing_email,omitempty" json:"-"`
	Billing            Billing `bson:"billing" json:"billing"`

	Items     []LineItem     `bson:"items" json:"items"`
	History   []StatusRecord `bson:"history" json:"history"`
	CreatedAt time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updatedAt"`
}

type Billing struct {
	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone" json:"phone"`
}

type LineItem struct {
	ProductID string  `bson:"product_id" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Total     float64 `bson:"total" json:"total"`
}

type StatusRecord struct {
	From      string    `bson:"from" json:"from"`
	Status    string    `bson:"status" json:"status"`
	Reason    string    `bson:"reason" json:"reason"`
	UserID    string    `bson:"user" json:"userId"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`

	// Para marcar cuál es el último
	Current bool `bson:"current" json:"current"`
}

// BillingEmail es el accesor moderno del email de facturación.
func (o *Order) BillingEmail() string {
	if o == nil {
		return ""
	}
	return o.Billing.Email
}

// DisplayNumber devuelve el número visible de la orden (o el id si no tiene).
func (o *Order) DisplayNumber() string {
	if o.Number != "" {
		return o.Number
	}
	return o.OrderID
}

// HasStatus indica si el estado actual está entre los dados.
func (o *Order) HasStatus(statuses ...string) bool {
	for _, s := range statuses {
		if o.Status == s {
			return true
		}
	}
	return false
}

// StatusChange es el payload del evento de cambio de estado.
type StatusChange struct {
	OrderID string    `json:"orderId"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	ActorID string    `json:"actorId"`
	At      time.Time `json:"at"`
}
