package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ReceiptsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_receipts_created_total",
			Help: "Receipt records created, by trigger (admission, renewal)",
		},
		[]string{"trigger"},
	)

	ArtifactsIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gym_receipt_artifacts_issued_total",
		Help: "Receipt PDFs rendered and uploaded",
	})

	ArtifactFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_receipt_artifact_failures_total",
			Help: "Artifact pipeline failures, by stage (render, upload, persist)",
		},
		[]string{"stage"},
	)

	ConsentsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gym_consents_accepted_total",
		Help: "Pending clients activated through the consent page",
	})

	NotificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_notification_failures_total",
			Help: "Best-effort notification failures, by channel",
		},
		[]string{"channel"},
	)
)
