package webhook

import (
	"encoding/json"
	"fmt"
)

// Vendor event names.
const (
	EventOrderCreated        = "order_created"
	EventSubscriptionCreated = "subscription_created"
)

type payload struct {
	Meta struct {
		EventName  string         `json:"event_name"`
		CustomData map[string]any `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status      string `json:"status"`
			UserEmail   string `json:"user_email"`
			UserName    string `json:"user_name"`
			OrderNumber int    `json:"order_number"`
		} `json:"attributes"`
	} `json:"data"`
}

// Event is one of OrderCreated, SubscriptionCreated or Unhandled.
type Event interface {
	EventName() string
	event()
}

type OrderCreated struct {
	OrderID     string
	OrderNumber int
	Email       string
	UserName    string
	Status      string
}

type SubscriptionCreated struct {
	SubscriptionID string
}

// Unhandled is any event this service does not act on.
type Unhandled struct {
	Name string
}

func (OrderCreated) EventName() string        { return EventOrderCreated }
func (SubscriptionCreated) EventName() string { return EventSubscriptionCreated }
func (u Unhandled) EventName() string         { return u.Name }

func (OrderCreated) event()        {}
func (SubscriptionCreated) event() {}
func (Unhandled) event()           {}

// Parse decodes a vendor payload into its event variant.
func Parse(body []byte) (Event, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	switch p.Meta.EventName {
	case EventOrderCreated:
		a := p.Data.Attributes
		return OrderCreated{
			OrderID:     p.Data.ID,
			OrderNumber: a.OrderNumber,
			Email:       a.UserEmail,
			UserName:    a.UserName,
			Status:      a.Status,
		}, nil
	case EventSubscriptionCreated:
		return SubscriptionCreated{SubscriptionID: p.Data.ID}, nil
	}
	return Unhandled{Name: p.Meta.EventName}, nil
}
