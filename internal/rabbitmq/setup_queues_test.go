package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/library-catalog/internal/models"
)

func TestGetLoanQueues(t *testing.T) {
	queues := GetLoanQueues()

	require.NotEmpty(t, queues, "queues list should not be empty")

	first := queues[0]
	assert.Equal(t, "loans.audit", first.QueueName)
	assert.ElementsMatch(t, []string{
		models.EventLoanRenewed,
		models.EventLoanCheckedOut,
		models.EventLoanReturned,
		models.EventLoanOverdue,
	}, first.RoutingKeys)

	seen := map[string]bool{}
	for _, q := range queues {
		assert.Falsef(t, seen[q.QueueName], "duplicate queue name: %s", q.QueueName)
		seen[q.QueueName] = true
	}
}
