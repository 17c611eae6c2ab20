package services

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/empleo-corredor/apiserver/internal/mq"
	"github.com/empleo-corredor/apiserver/types"
)

// ApplicationEventsChannel is the broker channel carrying application
// lifecycle events.
const ApplicationEventsChannel = "application-events"

// Event names attached as the "event" message attribute.
const (
	EventApplicationSubmitted     = "application.submitted"
	EventApplicationStatusChanged = "application.status_changed"
)

// Notifier publishes application lifecycle events to a message broker.
// Publishing is best-effort: a broker failure never fails the request that
// triggered it. A nil Notifier (or one without a broker) is a no-op.
type Notifier struct {
	broker *mq.MQ
}

func NewNotifier(broker *mq.MQ) *Notifier {
	return &Notifier{broker: broker}
}

// ApplicationSubmitted announces a newly submitted application.
func (n *Notifier) ApplicationSubmitted(ctx context.Context, application types.Application) {
	if n == nil || n.broker == nil {
		return
	}
	data, err := json.Marshal(application)
	if err != nil {
		return
	}
	_, _ = n.broker.Publish(ctx, ApplicationEventsChannel, data, map[string]string{
		"event":          EventApplicationSubmitted,
		"application_id": strconv.Itoa(application.ID),
	})
}

// ApplicationStatusChanged announces a review-status change.
func (n *Notifier) ApplicationStatusChanged(ctx context.Context, applicationID int, status string) {
	if n == nil || n.broker == nil {
		return
	}
	payload := struct {
		ApplicationID int    `json:"application_id"`
		Status        string `json:"status"`
	}{ApplicationID: applicationID, Status: status}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = n.broker.Publish(ctx, ApplicationEventsChannel, data, map[string]string{
		"event":          EventApplicationStatusChanged,
		"application_id": strconv.Itoa(applicationID),
	})
}
