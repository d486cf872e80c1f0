package inbox

import "github.com/prometheus/client_golang/prometheus"

// Failure reasons used as the "reason" label.
const (
	ReasonSignature = "signature"
	ReasonDecrypt   = "decrypt"
	ReasonScheme    = "scheme"
	ReasonMalformed = "malformed"
	ReasonKey       = "key"
	ReasonOther     = "other"
)

type Metrics struct {
	Ingested       prometheus.Counter
	Failed         *prometheus.CounterVec
	PollErrors     prometheus.Counter
	ProfileRefresh *prometheus.CounterVec
}

// NewMetrics creates the inbox collectors and registers them on reg when it
// is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ingested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stampmsg",
			Subsystem: "inbox",
			Name:      "messages_ingested_total",
			Help:      "Messages decoded and delivered.",
		}),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stampmsg",
			Subsystem: "inbox",
			Name:      "messages_failed_total",
			Help:      "Messages skipped because they could not be verified, decrypted or parsed.",
		}, []string{"reason"}),
		PollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stampmsg",
			Subsystem: "inbox",
			Name:      "poll_errors_total",
			Help:      "Scheduled refreshes that returned an error.",
		}),
		ProfileRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stampmsg",
			Subsystem: "contacts",
			Name:      "profile_refresh_total",
			Help:      "Contact profile refreshes by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Ingested, m.Failed, m.PollErrors, m.ProfileRefresh)
	}
	return m
}
