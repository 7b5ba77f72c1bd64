package bridge

import (
	"context"
	"time"

	"github.com/ibs-source/rc-bridge/internal/log"
	"github.com/ibs-source/rc-bridge/internal/message"
	"github.com/ibs-source/rc-bridge/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// Notifier publishes {timestamp, level, message} notices to the messages topic.
type Notifier struct {
	pub   telemetry.Publisher
	topic string
	now   func() time.Time
	log   *log.Logger
}

// NewNotifier creates a notifier publishing to topic.
func NewNotifier(pub telemetry.Publisher, topic string, logger *log.Logger) *Notifier {
	return &Notifier{pub: pub, topic: topic, now: time.Now, log: logger}
}

// Notify publishes one notice. Failures are logged, not returned.
func (n *Notifier) Notify(ctx context.Context, level message.Level, text string) {
	payload := message.Notification(n.now(), level, text)
	if err := n.pub.Publish(ctx, n.topic, payload); err != nil {
		n.log.WarnWithFields(logrus.Fields{"topic": n.topic, "level": string(level)}, "Failed to publish notification: %v", err)
	}
}
