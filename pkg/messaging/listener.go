package messaging

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	name := getName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	err = ch.QueueBind(q.Name, name, name, false, nil)
	if err != nil {
		return nil, err
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

// ListenToTopic acks every delivery the handler accepts and stops at the
// first handler error.
func ListenToTopic(ch *amqp.Channel, prefix string, topic ChangeTopic, logger *zap.Logger, handler func(amqp.Delivery) error) (<-chan struct{}, error) {
	fc, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func(msgs <-chan amqp.Delivery) {
		defer close(done)
		defer ch.Close()
		for d := range msgs {
			if err := handler(d); err != nil {
				logger.Error("error processing message", zap.String("topic", string(topic)), zap.Error(err))
				d.Nack(false, false)
				return
			}
			d.Ack(false)
		}
	}(fc)
	return done, nil
}
