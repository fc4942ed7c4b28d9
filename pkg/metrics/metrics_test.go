package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "rankdesk")
				So(manager.subsystem, ShouldEqual, "sessions")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test-namespace")
				So(manager.subsystem, ShouldEqual, "test-subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When creating with empty option values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults should survive", func() {
				So(manager.namespace, ShouldEqual, "rankdesk")
				So(manager.subsystem, ShouldEqual, "sessions")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Then the package-level recorders do not panic", func() {
			So(func() {
				RecordEditorOpened()
				RecordEditorClosed()
				UpdateActiveEditors(3)
				RecordGridResize("players")
				RecordModeConversion("team")

				RecordSubmissionAccepted()
				RecordSubmissionApplied()
				RecordSubmissionDuplicate()
				RecordSubmissionRejected("backpressure")

				UpdateQueueSize(5)
				UpdateQueueCapacity(100)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError("queue_full")

				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(12.5)
				RecordWorkerError()

				RecordStandingsUpdate()
				RecordStandingsUpdateLatency(3.2)

				RecordHTTPRequest("/editors", "POST", "201")
				RecordHTTPRequestDuration("/editors", "POST", "201", 8.0)
				RecordErrorByEndpoint("/editors", "POST", "client_error")

				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(42)
				RecordSystemGCPauseTime(0.7)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry gathers the recorded families", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
