package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))
			So(manager, ShouldNotBeNil)
			So(manager.namespace, ShouldEqual, "replaystats")
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then options are applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "sub")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.constLabels["env"], ShouldEqual, "test")
			})

			Convey("Then metrics are registered under the namespace", func() {
				manager.replaysProcessed.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_sub_replays_processed_total")
			})
		})

		Convey("Empty options keep defaults", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)
			So(manager.namespace, ShouldEqual, "replaystats")
			So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Pipeline counters increase", func() {
			before := testutil.ToFloat64(globalManager.replaysProcessed)
			RecordReplayProcessed()
			So(testutil.ToFloat64(globalManager.replaysProcessed), ShouldEqual, before+1)

			RecordFault("sword_stab")
			RecordFault("sword_stab")
			So(testutil.ToFloat64(globalManager.engineFaults.WithLabelValues("sword_stab")), ShouldBeGreaterThanOrEqualTo, 2)

			RecordEventDispatched("elim")
			So(testutil.ToFloat64(globalManager.eventsDispatched.WithLabelValues("elim")), ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("Gauges take the last value", func() {
			UpdateQueueSize(7)
			So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
			UpdateMatchesStored(3)
			So(testutil.ToFloat64(globalManager.matchesStored), ShouldEqual, 3)
		})

		Convey("Recording helpers never panic", func() {
			So(func() {
				RecordReplayFailed()
				RecordReplayDuplicate()
				RecordReplayLatency(12)
				RecordTick()
				RecordDensitySample()
				RecordOutputBytes("summary", 128)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.5)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(2)
				UpdateWorkerActiveCount(1)
				RecordWorkerProcessingLatency(3)
				RecordWorkerError()
				RecordRepositorySaveLatency(1)
				RecordRepositoryQueryLatency(1)
				RecordHTTPRequest("/stats", "GET", "200")
				RecordHTTPRequestDuration("/stats", "GET", "200", 1)
				RecordErrorByComponent("engine", "fault")
			}, ShouldNotPanic)
		})

		Convey("The custom registry is exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
