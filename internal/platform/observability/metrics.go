package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MembershipLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_membership_lookups_total",
		Help: "The total number of per-channel membership lookups",
	}, []string{"outcome"})

	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_verifications_total",
		Help: "The total number of completed membership verifications",
	}, []string{"result"})

	VerificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gate_verification_duration_seconds",
		Help:    "Duration of full membership verifications",
		Buckets: prometheus.DefBuckets,
	})

	ChannelsConfigured = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gate_channels_configured",
		Help: "Number of channels currently registered in the store",
	})

	StoreWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_store_writes_total",
		Help: "The total number of channel store persistence attempts",
	}, []string{"status"})

	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_api_requests_total",
		Help: "The total number of gate API requests",
	}, []string{"route", "status"})
)

// Metric label values.
const (
	OutcomeMember    = "member"
	OutcomeNotMember = "not_member"
	OutcomeError     = "error"

	ResultPass = "pass"
	ResultFail = "fail"

	StatusOK    = "ok"
	StatusError = "error"
)
