package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"authgate/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
)

// googlePubSubNotifier publishes notices ordered per user, so a mailer that
// consumes in order always sends the most recently issued code last.
type googlePubSubNotifier struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    *slog.Logger
}

// NewGooglePubSubNotifier creates a new Google Pub/Sub notifier
func NewGooglePubSubNotifier(ctx context.Context, projectID, topicID string, logger *slog.Logger) (service.VerificationNotifier, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Fail at startup rather than on the first issued code.
	_, err = client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
		Topic: topicName(projectID, topicID),
	})
	if err != nil {
		client.Close()

		return nil, errors.Wrapf(err, "failed to get topic %s", topicID)
	}

	publisher := client.Publisher(topicID)
	publisher.EnableMessageOrdering = true

	return &googlePubSubNotifier{
		client:    client,
		publisher: publisher,
		logger:    logger,
	}, nil
}

func topicName(projectID, topicID string) string {
	return fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
}

// NotifyVerificationCode publishes the notice and waits for the server ack
func (p *googlePubSubNotifier) NotifyVerificationCode(ctx context.Context, notice *service.VerificationNotice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return errors.WithStack(err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:        data,
		Attributes:  noticeAttributes(notice),
		OrderingKey: notice.UserID,
	})

	serverID, err := result.Get(ctx)
	if err != nil {
		// A failed publish pauses its ordering key until resumed.
		p.publisher.ResumePublish(notice.UserID)

		return errors.Wrapf(err, "publish %s notice", notice.Purpose)
	}

	p.logger.Debug("[GooglePubSub] Notice published",
		slog.String("purpose", string(notice.Purpose)),
		slog.String("user_id", notice.UserID),
		slog.String("server_id", serverID),
	)

	return nil
}

// Close flushes pending messages and releases client resources
func (p *googlePubSubNotifier) Close() error {
	if p.publisher != nil {
		p.publisher.Stop()
	}
	if p.client != nil {
		return errors.WithStack(p.client.Close())
	}

	return nil
}
