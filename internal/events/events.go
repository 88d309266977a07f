// Package events publishes purchase lifecycle events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const TypePurchaseConfirmed = "purchase.confirmed"

// PurchaseConfirmed is emitted once a checkout session is verified as paid.
type PurchaseConfirmed struct {
	ID                  string    `json:"id"`
	Type                string    `json:"event_type"`
	CustomerID          string    `json:"customer_id"`
	SessionID           string    `json:"session_id"`
	ProductName         string    `json:"product_name,omitempty"`
	DownloadLinkCreated bool      `json:"download_link_created"`
	EmailSent           bool      `json:"email_sent"`
	OccurredAt          time.Time `json:"occurred_at"`
}

func NewPurchaseConfirmed(customerID, sessionID string, at time.Time) PurchaseConfirmed {
	return PurchaseConfirmed{
		ID:         uuid.NewString(),
		Type:       TypePurchaseConfirmed,
		CustomerID: customerID,
		SessionID:  sessionID,
		OccurredAt: at,
	}
}

// Publisher delivers encoded events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, id string, topic string, payload []byte) error
}

// PublishPurchaseConfirmed encodes ev and hands it to pub.
func PublishPurchaseConfirmed(ctx context.Context, pub Publisher, ev PurchaseConfirmed) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	return pub.Publish(ctx, ev.ID, ev.Type, payload)
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, []byte) error { return nil }
