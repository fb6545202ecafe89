package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/solheim-lab/hyttevakt/internal/eventbus"
	"github.com/solheim-lab/hyttevakt/internal/storage"
)

// sendTimeout bounds a single delivery attempt.
const sendTimeout = 30 * time.Second

// SettingsLoader is a function that loads the current notification settings.
// It is called on every event so that configuration changes take effect
// without requiring a restart.
type SettingsLoader func() (*Settings, error)

// Handler receives availability-change events from the bus and delivers
// notifications according to the current settings. Delivery is
// fire-and-forget: the watcher never waits on it.
type Handler struct {
	settingsLoader SettingsLoader
	store          storage.NotificationStore
	logger         *slog.Logger

	// newProvider is replaceable in tests.
	newProvider func(SMTPConfig) Provider
}

// NewHandler creates a new Handler.
func NewHandler(loader SettingsLoader, store storage.NotificationStore, logger *slog.Logger) *Handler {
	return &Handler{
		settingsLoader: loader,
		store:          store,
		logger:         logger,
		newProvider:    func(cfg SMTPConfig) Provider { return NewSMTPProvider(cfg) },
	}
}

// Listener returns the eventbus listener for this handler. Only
// availability-change events are handled; everything else is ignored.
func (h *Handler) Listener() eventbus.Listener {
	return func(e eventbus.Event) {
		if e.Type != eventbus.EventAvailabilityChanged {
			return
		}
		h.handle(e.Payload)
	}
}

// handle loads settings, builds the message, calls the provider, and logs
// the outcome to the notification store.
func (h *Handler) handle(payload map[string]string) {
	settings, err := h.settingsLoader()
	if err != nil {
		h.logger.Error("failed to load notification settings", "error", err)
		return
	}
	if !settings.Enabled {
		return
	}

	msg := Message{
		Subject: payload["title"],
		Body:    payload["body"],
	}
	provider := h.newProvider(settings.SMTP)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	sendErr := provider.Send(ctx, msg)

	entry := storage.NotificationLogEntry{
		CabinID:   payload["cabin_id"],
		Tier:      payload["tier"],
		Provider:  provider.Name(),
		Subject:   msg.Subject,
		Status:    "sent",
		CreatedAt: time.Now(),
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.ErrorMsg = sendErr.Error()
		h.logger.Error("failed to send notification",
			"cabin_id", entry.CabinID, "tier", entry.Tier, "error", sendErr)
	}

	if logErr := h.store.LogNotification(context.Background(), entry); logErr != nil {
		h.logger.Error("failed to log notification delivery",
			"cabin_id", entry.CabinID, "error", logErr)
	}
}
