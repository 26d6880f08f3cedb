package sockethandler

import (
	"github.com/marschall/jboss-logmanager-ext/base"
	"github.com/marschall/jboss-logmanager-ext/util"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
)

// handlerMetrics defines metrics of one socket handler
type handlerMetrics struct {
	publishedRecordsTotal  promext.RWCounter
	publishedBytesTotal    promext.RWCounter
	openedConnectionsTotal promext.RWCounter
	networkErrorsTotal     promext.RWCounter
	nonNetworkErrorsTotal  promext.RWCounter
	droppedFormat          promext.RWCounter
	droppedUnavailable     promext.RWCounter
	droppedWrite           promext.RWCounter
}

func newHandlerMetrics(metricCreator promreg.MetricCreator) handlerMetrics {
	outputMetricCreator := metricCreator.AddOrGetPrefix("output_", []string{"output"}, []string{"socket"})
	dropped := outputMetricCreator.AddOrGetCounterVec("dropped_records_total", "Numbers of dropped log records", []string{"reason"}, nil)

	return handlerMetrics{
		publishedRecordsTotal:  outputMetricCreator.AddOrGetCounter("published_records_total", "Numbers of published log records", nil, nil),
		publishedBytesTotal:    outputMetricCreator.AddOrGetCounter("published_bytes_total", "Total length in bytes of published log records", nil, nil),
		openedConnectionsTotal: outputMetricCreator.AddOrGetCounter("opened_connections_total", "Numbers of opened connections", nil, nil),
		networkErrorsTotal:     outputMetricCreator.AddOrGetCounter("network_errors_total", "Numbers of network errors", nil, nil),
		nonNetworkErrorsTotal:  outputMetricCreator.AddOrGetCounter("nonnetwork_errors_total", "Numbers of non-network errors (formatting, charset, etc)", nil, nil),
		droppedFormat:          dropped.WithLabelValues("format"),
		droppedUnavailable:     dropped.WithLabelValues("unavailable"),
		droppedWrite:           dropped.WithLabelValues("write"),
	}
}

func (metrics *handlerMetrics) OnError(err error) {
	if err != nil && util.IsNetworkError(err) {
		metrics.networkErrorsTotal.Inc()
	} else {
		metrics.nonNetworkErrorsTotal.Inc()
	}
}

func (metrics *handlerMetrics) OnOpened() {
	metrics.openedConnectionsTotal.Inc()
}

func (metrics *handlerMetrics) OnPublished(length int) {
	metrics.publishedRecordsTotal.Inc()
	metrics.publishedBytesTotal.Add(uint64(length))
}

func (metrics *handlerMetrics) OnDropped(kind base.FailureKind) {
	switch kind {
	case base.FormatFailure:
		metrics.droppedFormat.Inc()
	case base.WriteFailure:
		metrics.droppedWrite.Inc()
	default:
		metrics.droppedUnavailable.Inc()
	}
}
