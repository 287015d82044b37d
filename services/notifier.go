package services

import (
	"fmt"
	"log"

	pubnub "github.com/pubnub/go"

	"ticket-storefront/models"
)

const systemStatusChannel = "system-status"

// Notifier publishes storefront events to per-user PubNub channels and
// connection-state changes to a shared system channel. A nil Notifier
// (or one built without keys) is a no-op so the service runs without
// PubNub configured.
type Notifier struct {
	pn *pubnub.PubNub
}

func NewNotifier(pn *pubnub.PubNub) *Notifier {
	return &Notifier{pn: pn}
}

func (n *Notifier) publish(channel string, message map[string]any) {
	if n == nil || n.pn == nil {
		return
	}
	_, st, err := n.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		log.Printf("notifier: publish %s: %v (status %d)", channel, err, st.StatusCode)
	}
}

// NotifyOrderConfirmed tells the user their checkout completed.
func (n *Notifier) NotifyOrderConfirmed(userID string, order *models.Order) {
	n.publish(fmt.Sprintf("user-%s", userID), map[string]any{
		"type":         "order_confirmed",
		"order_id":     order.OrderID,
		"total_amount": order.TotalAmount.String(),
		"items":        len(order.Items),
	})
}

// NotifyRefund tells the user their order was cancelled.
func (n *Notifier) NotifyRefund(userID, orderID string) {
	n.publish(fmt.Sprintf("user-%s", userID), map[string]any{
		"type":     "order_refunded",
		"order_id": orderID,
	})
}

// NotifyConnectionState announces a failover transition.
func (n *Notifier) NotifyConnectionState(state string, cause string) {
	n.publish(systemStatusChannel, map[string]any{
		"type":  "connection_state",
		"state": state,
		"cause": cause,
	})
}
