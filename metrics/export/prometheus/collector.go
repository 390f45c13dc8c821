package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/authward/authward/metrics/export/internaldefs"
)

// Collector bridges engine metrics into a client_golang registry so they
// can be scraped alongside the process's other metrics. Each Collect reads
// a fresh snapshot; nothing is cached between scrapes.
type Collector struct {
	source       metricsSource
	counterDescs []*prometheus.Desc
	histDescs    []*prometheus.Desc
	droppedDesc  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a Collector reading from source. Register it with
// prometheus.MustRegister or a dedicated registry.
func NewCollector(source metricsSource) *Collector {
	c := &Collector{
		source:       source,
		counterDescs: make([]*prometheus.Desc, len(internaldefs.CounterDefs)),
		histDescs:    make([]*prometheus.Desc, len(internaldefs.HistogramDefs)),
		droppedDesc: prometheus.NewDesc(
			"authward_audit_dropped_total",
			"Dropped audit events due to dispatcher backpressure.",
			nil, nil,
		),
	}
	for i, def := range internaldefs.CounterDefs {
		c.counterDescs[i] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	for i, def := range internaldefs.HistogramDefs {
		c.histDescs[i] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.counterDescs {
		ch <- d
	}
	for _, d := range c.histDescs {
		ch <- d
	}
	ch <- c.droppedDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.source == nil {
		return
	}

	snapshot := c.source.MetricsSnapshot()

	for i, def := range internaldefs.CounterDefs {
		ch <- prometheus.MustNewConstMetric(
			c.counterDescs[i],
			prometheus.CounterValue,
			float64(snapshot.Counters[def.ID]),
		)
	}

	for i, def := range internaldefs.HistogramDefs {
		nonCumulative := internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID])
		cumulative := internaldefs.CumulativeBuckets(nonCumulative)

		buckets := make(map[float64]uint64, len(internaldefs.HistogramBoundValues))
		for j, bound := range internaldefs.HistogramBoundValues {
			buckets[bound] = cumulative[j]
		}
		count := cumulative[len(cumulative)-1]

		// The engine does not track a latency sum; expose zero (matches
		// the text exporter).
		ch <- prometheus.MustNewConstHistogram(c.histDescs[i], count, 0, buckets)
	}

	ch <- prometheus.MustNewConstMetric(
		c.droppedDesc,
		prometheus.CounterValue,
		float64(c.source.AuditDropped()),
	)
}
