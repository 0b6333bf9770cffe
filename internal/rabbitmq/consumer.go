package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
)

// ConsumerMessage читает очередь queueName и передаёт тело каждого сообщения в handler.
// Сообщение подтверждается, если handler вернул nil, иначе возвращается в очередь.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	sem := make(chan struct{}, 10)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(delivery amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(delivery.Body); err != nil {
						log.Warn("handler failed, message requeued", sl.Err(err))
						if nackErr := delivery.Nack(false, true); nackErr != nil {
							log.Error("failed to nack message", sl.Err(nackErr))
						}
						return
					}
					if ackErr := delivery.Ack(false); ackErr != nil {
						log.Error("failed to ack message", sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// AuditHandler возвращает обработчик, который пишет события выдачи в журнал.
// Нечитаемые сообщения отбрасываются: повторная доставка их не исправит.
func AuditHandler(log *slog.Logger) func([]byte) error {
	return func(body []byte) error {
		var event models.LoanEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Error("malformed loan event dropped", sl.Err(err))
			return nil
		}
		attrs := []any{
			slog.String("type", event.Type),
			slog.String("loan_id", event.LoanID),
			slog.Int("book_id", event.BookID),
			slog.String("book_title", event.BookTitle),
		}
		if event.BorrowerUID != nil {
			attrs = append(attrs, slog.String("borrower_uid", *event.BorrowerUID))
		}
		if event.DueBack != nil {
			attrs = append(attrs, slog.String("due_back", event.DueBack.Format("2006-01-02")))
		}
		log.Info("loan event", attrs...)
		return nil
	}
}
