// Package pubsub delivers verification notices to the mailer over Pub/Sub.
package pubsub

import (
	"context"
	"log/slog"

	"authgate/config"
	"authgate/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// noopNotifier drops notices when no Pub/Sub provider is configured
type noopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier returns a notifier that accepts and discards every notice.
func NewNoopNotifier(logger *slog.Logger) service.VerificationNotifier {
	return &noopNotifier{logger: logger}
}

func (p *noopNotifier) NotifyVerificationCode(_ context.Context, notice *service.VerificationNotice) error {
	p.logger.Debug("[NoopPubSub] Notice publishing disabled, skipping",
		slog.String("purpose", string(notice.Purpose)),
		slog.String("user_id", notice.UserID),
	)

	return nil
}

func (p *noopNotifier) Close() error {
	return nil
}

// NotifierParams holds dependencies for VerificationNotifier, injected by Fx
type NotifierParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewVerificationNotifier creates a VerificationNotifier based on configuration
func NewVerificationNotifier(params NotifierParams) (service.VerificationNotifier, error) {
	cfg := params.Config.PubSub
	logger := params.Logger

	// If PubSub is not configured, return a no-op notifier
	if cfg == nil || cfg.Provider == "" {
		logger.Warn("PubSub not configured, verification codes will not be delivered")

		return NewNoopNotifier(logger), nil
	}

	var notifier service.VerificationNotifier
	var err error

	switch cfg.Provider {
	case config.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}
		logger.Info("Using local HTTP publisher for Pub/Sub",
			slog.String("endpoint", cfg.LocalEndpoint),
		)

		notifier = NewLocalHTTPNotifier(cfg.LocalEndpoint, logger)

	case config.PubSubProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}
		logger.Info("Using Google Pub/Sub publisher",
			slog.String("project_id", cfg.ProjectID),
			slog.String("topic_id", cfg.TopicID),
		)

		notifier, err = NewGooglePubSubNotifier(params.Ctx, cfg.ProjectID, cfg.TopicID, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}

	// Register lifecycle hook to close notifier on shutdown
	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing VerificationNotifier")

			return notifier.Close()
		},
	})

	return notifier, nil
}

// noticeAttributes are the message attributes subscribers filter and trace on.
// The code itself only travels in the payload.
func noticeAttributes(notice *service.VerificationNotice) map[string]string {
	attributes := map[string]string{
		"purpose": string(notice.Purpose),
		"user_id": notice.UserID,
	}
	if notice.RequestID != "" {
		attributes["request_id"] = notice.RequestID
	}

	return attributes
}

// Module provides the Pub/Sub FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewVerificationNotifier),
)
