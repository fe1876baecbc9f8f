package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ChatRequests       prometheus.Counter
	ChatFallbacks      prometheus.Counter
	InstructionUpdates prometheus.Counter
}

var (
	once   sync.Once
	global *Metrics
)

func Global() *Metrics {
	once.Do(func() {
		global = &Metrics{
			ChatRequests: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "wromgpt",
				Name:      "chat_requests_total",
				Help:      "Total chat requests received",
			}),
			ChatFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "wromgpt",
				Name:      "chat_fallbacks_total",
				Help:      "Total chat requests answered with the fallback response",
			}),
			InstructionUpdates: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "wromgpt",
				Name:      "instruction_updates_total",
				Help:      "Total system instruction updates",
			}),
		}
		prometheus.MustRegister(global.ChatRequests, global.ChatFallbacks, global.InstructionUpdates)
	})
	return global
}
