package tracking

import (
	"context"
	"time"

	"github.com/matst80/dematerialized-catalog/pkg/common"
	"github.com/matst80/dematerialized-catalog/pkg/messaging"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	trackingPrefix  = "catalog"
	trackingContext = "storefront"
	publishTimeout  = 2 * time.Second
	batchSize       = 50
	flushInterval   = 500 * time.Millisecond
)

// RabbitTracking publishes events to the tracking topic from a background
// queue so callers never wait on the broker.
type RabbitTracking struct {
	connection *amqp.Connection
	queue      *common.QueueHandler[any]
	logger     *zap.Logger
}

func NewRabbitTracking(url string, logger *zap.Logger) (*RabbitTracking, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ret := RabbitTracking{
		connection: nil,
		logger:     logger,
	}
	err := ret.connect(url)
	if err != nil {
		return nil, err
	}
	ret.queue = common.NewQueueHandler(ret.publish, batchSize, flushInterval)
	return &ret, nil
}

func (t *RabbitTracking) connect(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	if err := defineTopology(conn); err != nil {
		return err
	}
	t.connection = conn
	return nil
}

type channelOpener interface {
	Channel() (*amqp.Channel, error)
	Close() error
}

// defineTopology declares the tracking topic and closes conn when that fails.
func defineTopology(conn channelOpener) error {
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	err = messaging.DefineTopic(ch, trackingPrefix, messaging.TrackingTopic)
	ch.Close()
	if err != nil {
		conn.Close()
		return err
	}
	return nil
}

// Close publishes queued events and closes the connection.
func (t *RabbitTracking) Close() error {
	t.queue.Close()
	return t.connection.Close()
}

func (t *RabbitTracking) publish(events []any) {
	for _, data := range events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := messaging.SendChange(ctx, t.connection, trackingPrefix, messaging.TrackingTopic, data); err != nil {
			t.logger.Warn("error sending tracking event", zap.Error(err))
		}
		cancel()
	}
}

func (t *RabbitTracking) send(data any) {
	t.queue.Add(data)
}

func base(sessionId string, event uint16) *BaseEvent {
	return &BaseEvent{SessionId: sessionId, Event: event, Context: trackingContext}
}

func (t *RabbitTracking) TrackPageView(sessionId string, selections types.Selections, state types.PageState, results int) {
	t.send(&PageView{
		BaseEvent:       base(sessionId, PageViewEvent),
		Filters:         FilterValues(selections),
		Page:            state.CurrentPage,
		TotalPages:      state.TotalPages,
		NumberOfResults: results,
	})
}

func (t *RabbitTracking) TrackFilterReset(sessionId string) {
	t.send(base(sessionId, FilterResetEvent))
}

func (t *RabbitTracking) TrackWishlist(sessionId string, itemId string, added bool) {
	t.send(&WishlistChange{
		BaseEvent: base(sessionId, WishlistEvent),
		Item:      itemId,
		Added:     added,
	})
}

// Listen hands every tracking event body to handler until the connection
// closes. The returned func closes the connection.
func Listen(url string, logger *zap.Logger, handler func(body []byte) error) (<-chan struct{}, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := messaging.DefineTopic(ch, trackingPrefix, messaging.TrackingTopic); err != nil {
		conn.Close()
		return nil, nil, err
	}
	done, err := messaging.ListenToTopic(ch, trackingPrefix, messaging.TrackingTopic, logger, func(d amqp.Delivery) error {
		return handler(d.Body)
	})
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return done, conn.Close, nil
}
