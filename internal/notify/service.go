package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"invoice-courier/internal/shared/metrics"
	"invoice-courier/internal/shared/telemetry"
)

const messageTemplate = "Your invoice is ready. Download it here: %s"

// Service looks up the customer's opt-in, sends the notification, and logs
// the outcome for audit.
type Service struct {
	Profiles ProfileRepo
	Log      LogRepo
	Client   *GatewayClient
}

// Notify sends the share link to the customer's phone. A missing profile or
// an inactive opt-in suppresses the send without error. A gateway rejection
// is returned as a *GatewayError after metrics and logging.
func (s *Service) Notify(ctx context.Context, phone, customerID, link string) (Outcome, error) {
	profile, err := s.Profiles.GetByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			telemetry.Warn("notify.suppressed.no_profile", map[string]any{
				"customer_id": customerID,
			})
			metrics.IncNotificationsSuppressed()
			return OutcomeSuppressed, nil
		}
		return "", fmt.Errorf("load sms profile for %s: %w", customerID, err)
	}
	if profile.Status != StatusActive {
		telemetry.Info("notify.suppressed.opted_out", map[string]any{
			"customer_id": customerID,
			"status":      profile.Status,
		})
		metrics.IncNotificationsSuppressed()
		return OutcomeSuppressed, nil
	}

	text := fmt.Sprintf(messageTemplate, link)
	detail, err := s.Client.Send(ctx, profile.APIUsername, profile.APIPassword, phone, text)
	if err != nil {
		metrics.IncNotificationsFailed()
		return "", err
	}

	entry := LogEntry{
		ID:            uuid.NewString(),
		CustomerID:    customerID,
		APIUsername:   profile.APIUsername,
		Phone:         phone,
		ShareLink:     link,
		GatewayDetail: detail,
		SentAt:        time.Now().UTC(),
	}
	if err := s.Log.Append(ctx, entry); err != nil {
		// The message is already out; a failed audit write is logged, not fatal.
		telemetry.Error("notify.log_append_failed", map[string]any{
			"customer_id": customerID,
			"error":       err.Error(),
		})
	}

	telemetry.Info("notify.sent", map[string]any{
		"customer_id": customerID,
		"phone":       phone,
		"detail":      detail,
	})
	metrics.IncNotificationsSent()
	return OutcomeSent, nil
}
