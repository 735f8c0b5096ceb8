package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	TransfersCreated prometheus.Counter
	TransferErrors   *prometheus.CounterVec

	// Deposit metrics
	DepositsInitiated prometheus.Counter
	DepositsConfirmed prometheus.Counter
	DepositsReplayed  prometheus.Counter
	DepositErrors     *prometheus.CounterVec

	// Webhook metrics
	WebhooksReceived prometheus.Counter
	WebhooksRejected prometheus.Counter

	// Sweeper metrics
	SweepDepositsExpired      prometheus.Counter
	SweepTransfersCompensated prometheus.Counter
	SweepErrors               *prometheus.CounterVec

	// Onboarding metrics
	UsersRegistered prometheus.Counter
	APIKeysCreated  prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kobolet_transfers_created_total",
			Help: "Total number of committed wallet-to-wallet transfers",
		}),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kobolet_transfer_errors_total",
				Help: "Total number of rejected transfers by reason",
			},
			[]string{"reason"},
		),

		DepositsInitiated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kobolet_deposits_initiated_total",
			Help: "Total number of deposits initiated with the payment provider",
		}),
		DepositsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kobolet_deposits_confirmed_total",
			Help: "Total number of deposits credited to a wallet",
		}),
		DepositsReplayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kobolet_deposits_replayed_total",
			Help: "Total number of duplicate confirmations handled as no-ops",
		}),
		DepositErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kobolet_deposit_errors_total",
				Help: "Total number of deposit failures by stage",
			},
			[]string{"stage"},
		),

		WebhooksReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kobolet_webhooks_received_total",
			Help: "Total number of provider webhooks received",
		}),
		WebhooksRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kobolet_webhooks_rejected_total",
			Help: "Total number of provider webhooks rejected for bad signatures",
		}),

		SweepDepositsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kobolet_sweep_deposits_expired_total",
			Help: "Total number of stale pending deposits swept to failed",
		}),
		SweepTransfersCompensated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kobolet_sweep_transfers_compensated_total",
			Help: "Total number of orphaned transfers refunded by the sweeper",
		}),
		SweepErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kobolet_sweep_errors_total",
				Help: "Total number of sweeper failures by pass",
			},
			[]string{"pass"},
		),

		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kobolet_users_registered_total",
			Help: "Total number of registered users",
		}),
		APIKeysCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kobolet_api_keys_created_total",
			Help: "Total number of API keys created",
		}),
	}
}
