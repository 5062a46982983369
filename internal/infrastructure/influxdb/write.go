package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePollMetric records one completed poll cycle.
//
// This is the primary measurement for watching the bridge: poll latency,
// fleet size and churn per cycle. The write is non-blocking; data is
// batched and sent asynchronously.
//
// Parameters:
//   - result: Poll outcome ("ok", "transient", "auth" or "error")
//   - duration: Wall time of the fetch and classify cycle
//   - devices: Number of devices in the fetched listing
//   - added, updated, deleted, skipped: Classification counts
//
// Example:
//
//	client.WritePollMetric("ok", 230*time.Millisecond, 12, 0, 3, 0, 1)
func (c *Client) WritePollMetric(result string, duration time.Duration, devices, added, updated, deleted, skipped int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"bridge_poll",
		map[string]string{
			"result": result,
		},
		map[string]interface{}{
			"duration_ms": duration.Milliseconds(),
			"devices":     devices,
			"added":       added,
			"updated":     updated,
			"deleted":     deleted,
			"skipped":     skipped,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteEventMetric records the subscriber delivery counters and the
// current depth of the classification queue.
//
// Emitted and dropped are cumulative since startup; queue depth is an
// instantaneous gauge.
func (c *Client) WriteEventMetric(emitted, dropped uint64, queueDepth int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"bridge_events",
		map[string]string{},
		map[string]interface{}{
			"emitted":     int64(emitted),
			"dropped":     int64(dropped),
			"queue_depth": queueDepth,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("bridge_process",
//	    map[string]string{"host": "bridge-01"},
//	    map[string]interface{}{"goroutines": 42, "heap_mb": 18.4})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
