package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/caseworks/servicedesk/internal/config"
	"github.com/caseworks/servicedesk/internal/events"
)

// NotificationService handles emitting notifications for domain events.
// Actual delivery is stubbed; the welcome mail is how the generated initial
// password reaches the user out-of-band.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventCaseStateChanged, n.handleCaseStateChanged)
	n.dispatcher.Subscribe(events.EventCaseCommentAdded, n.handleCaseCommentAdded)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return nil
	}
	n.logger.Info("UserRegistered", zap.String("username", payload.Username))
	n.sendWelcomeEmailStub(ctx, payload)
	return nil
}

func (n *NotificationService) handleCaseStateChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseStateChanged", zap.Int64("case_id", event.CaseID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCaseCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseCommentAdded", zap.Int64("case_id", event.CaseID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// sendWelcomeEmailStub stands in for the mail sender that delivers the
// initial password. Debug level only: the plaintext must not reach normal
// logs.
func (n *NotificationService) sendWelcomeEmailStub(_ context.Context, payload events.UserRegisteredPayload) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendWelcomeEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", payload.Email),
		zap.String("initial_password", payload.InitialPassword))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("case_id", event.CaseID),
		zap.String("event_type", string(event.Type)))
}
