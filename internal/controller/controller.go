package controller

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
)

// statePusher is the slice of the gateway controllers use to write
// device state. The returned states are the values the service
// accepted, which the controller folds back into its model.
type statePusher interface {
	PushState(ctx context.Context, deviceID string, values []device.State) ([]device.State, error)
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// stateFrom converts a feature's wire rendering into an outgoing
// state stamped with the push time.
func stateFrom(value map[string]any, ts int64) device.State {
	st := device.State{Value: value["value"], LastUpdateTime: ts}
	if cls, ok := value["functionClass"].(string); ok {
		st.FunctionClass = cls
	}
	if inst, ok := value["functionInstance"].(string); ok {
		st.FunctionInstance = inst
	}
	return st
}

// changeSet accumulates changed-feature names, keeping first-seen
// order and dropping duplicates (multi-gang devices touch the same
// name once per gang).
type changeSet struct {
	keys []string
	seen map[string]bool
}

func (c *changeSet) mark(key string) {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.keys = append(c.keys, key)
}

// intValue normalises the numeric forms JSON decoding produces.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

// kelvinValue reads a color temperature that may arrive as a bare
// number or a "3000K" string.
func kelvinValue(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return intValue(strings.TrimSuffix(s, "K"))
	}
	return intValue(v)
}

// closestValue picks the supported value nearest the target, taking
// the lower one on ties.
func closestValue(supported []int, target int) int {
	if len(supported) == 0 {
		return target
	}
	best := supported[0]
	for _, v := range supported[1:] {
		if abs(v-target) < abs(best-target) {
			best = v
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// defaultClock stamps outgoing states; tests swap it out.
func defaultClock() time.Time {
	return time.Now()
}
