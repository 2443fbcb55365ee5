package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// WatermillBridge implements Publisher and Subscriber on top of watermill's
// in-memory GoChannel.
type WatermillBridge struct {
	pub    message.Publisher
	sub    message.Subscriber
	tracer trace.Tracer
}

const (
	// Metadata keys used to carry Message fields through a watermill message.
	metaKeyUserID = "user_id"
	metaKeyTopic  = "topic"
)

// NewWatermillBridge initializes an in-memory Pub/Sub system. A nil tracer
// disables tracing.
func NewWatermillBridge(tracer trace.Tracer) *WatermillBridge {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	logger := watermill.NewStdLogger(false, false)
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		logger,
	)

	return &WatermillBridge{
		pub:    goChannel,
		sub:    goChannel,
		tracer: tracer,
	}
}

func mapToWatermillMessage(msg Message) *message.Message {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)
	wmMsg.Metadata.Set(metaKeyUserID, msg.UserID)
	wmMsg.Metadata.Set(metaKeyTopic, msg.Topic)
	for k, v := range msg.Metadata {
		wmMsg.Metadata.Set(k, v)
	}
	return wmMsg
}

func mapToPubSubMessage(wmMsg *message.Message) Message {
	metadata := make(map[string]string)
	for k, v := range wmMsg.Metadata {
		if k != metaKeyTopic {
			metadata[k] = v
		}
	}
	return Message{
		Topic:    wmMsg.Metadata.Get(metaKeyTopic),
		UserID:   wmMsg.Metadata.Get(metaKeyUserID),
		Payload:  wmMsg.Payload,
		Metadata: metadata,
	}
}

func spanAttributes(operation string, wmMsg *message.Message) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("messaging.system", "watermill"),
		attribute.String("messaging.operation", operation),
		attribute.String("messaging.destination", wmMsg.Metadata.Get(metaKeyTopic)),
		attribute.String("messaging.message_id", wmMsg.UUID),
		attribute.Int("messaging.message_payload_size_bytes", len(wmMsg.Payload)),
	)
}

// Publish implements the Publisher interface.
func (wb *WatermillBridge) Publish(ctx context.Context, msg Message) error {
	wmMsg := mapToWatermillMessage(msg)

	_, span := wb.tracer.Start(ctx, fmt.Sprintf("pubsub.publish.%s", msg.Topic), spanAttributes("publish", wmMsg))
	defer span.End()

	if err := wb.pub.Publish(msg.Topic, wmMsg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to publish %s: %w", msg.Topic, err)
	}
	return nil
}

// Subscribe implements the Subscriber interface. Messages are processed on a
// dedicated goroutine until ctx is canceled or the bridge is closed.
func (wb *WatermillBridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := wb.sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for wmMsg := range messages {
			spanCtx, span := wb.tracer.Start(ctx, fmt.Sprintf("pubsub.process.%s", topic), spanAttributes("process", wmMsg))

			if err := handler(spanCtx, mapToPubSubMessage(wmMsg)); err != nil {
				slog.Error("Failed to handle message", "topic", topic, "msg_id", wmMsg.UUID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				// The in-memory channel does not redeliver; the nack only releases the message.
				wmMsg.Nack()
			} else {
				wmMsg.Ack()
			}
			span.End()
		}
		slog.Debug("Subscription message loop ended", "topic", topic)
	}()

	return nil
}

// Close shuts down the bridge and ends every subscription loop.
func (wb *WatermillBridge) Close() error {
	return wb.sub.Close()
}
