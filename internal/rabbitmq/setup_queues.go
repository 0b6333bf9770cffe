package rabbitmq

import "github.com/magabrotheeeer/library-catalog/internal/models"

// QueueConfig описывает очередь и ключи, с которыми она привязывается к обменнику.
type QueueConfig struct {
	QueueName   string
	RoutingKeys []string
}

// GetLoanQueues возвращает очереди событий выдачи.
func GetLoanQueues() []QueueConfig {
	return []QueueConfig{
		{
			QueueName: "loans.audit",
			RoutingKeys: []string{
				models.EventLoanRenewed,
				models.EventLoanCheckedOut,
				models.EventLoanReturned,
				models.EventLoanOverdue,
			},
		},
	}
}
