package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// MessagingClient defines the part of the Firebase messaging client the
// sender uses. This allows for easy mocking in tests.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender implements the Sender interface over Firebase Cloud Messaging.
type FCMSender struct {
	client MessagingClient // Messaging client for delivering notifications
	log    *slog.Logger    // Logger for logging operations
}

// NewFCMSender creates an FCM sender from a service account credentials file.
// An empty path falls back to application default credentials.
func NewFCMSender(ctx context.Context, credentialsFile string, log *slog.Logger) (*FCMSender, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return &FCMSender{client: client, log: log}, nil
}

// NewFCMSenderWithClient creates an FCM sender with a custom messaging
// client. Useful for testing with mocked clients.
func NewFCMSenderWithClient(client MessagingClient, log *slog.Logger) *FCMSender {
	return &FCMSender{client: client, log: log}
}

// Send delivers one push notification to the device identified by token.
// The Android notification uses the default sound channel.
func (fs *FCMSender) Send(ctx context.Context, token, title, body string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
	}

	messageID, err := fs.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}

	fs.log.DebugContext(ctx, "Push notification sent", "message_id", messageID)

	return nil
}
