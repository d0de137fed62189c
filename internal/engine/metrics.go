package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	// inboundMsgs counts processed inbound messages by matcher outcome.
	// Outcome keeps cardinality bounded: affirmative, negative, faq,
	// freeform, ignored.
	inboundMsgs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_messages_total",
			Help: "Total number of inbound candidate messages by outcome.",
		},
		[]string{"outcome"},
	)

	// dispositions counts finished conversations by final status.
	dispositions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_dispositions_total",
			Help: "Total number of completed screenings by final status.",
		},
		[]string{"status"},
	)

	// sendRetries counts outbound delivery attempts that had to be retried.
	sendRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "screening_send_retries_total",
			Help: "Total number of outbound send retries.",
		},
	)

	// sendFailures counts outbound messages dropped after the retry budget.
	sendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "screening_send_failures_total",
			Help: "Total number of outbound messages dropped after retries.",
		},
	)
)

func init() {
	prometheus.MustRegister(inboundMsgs, dispositions, sendRetries, sendFailures)
}
