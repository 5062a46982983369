package feature

import "fmt"

// Speed holds a fan speed as a percentage plus the ordered discrete speed
// names the device actually understands.
type Speed struct {
	Speed  int      `json:"speed"`
	Speeds []string `json:"speeds,omitempty"`
}

// APIValue renders the percentage back into the discrete speed name the
// service expects.
func (f Speed) APIValue() (string, error) {
	return PercentageToOrderedListItem(f.Speeds, f.Speed)
}

// OrderedListItemToPercentage determines the percentage an item represents
// within an ordered list. Given ["low", "medium", "high", "very_high"]:
// low=25, medium=50, high=75, very_high=100. Off states must not be part
// of the list.
func OrderedListItemToPercentage(ordered []string, item string) (int, error) {
	for i, candidate := range ordered {
		if candidate == item {
			return ((i + 1) * 100) / len(ordered), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownItem, item)
}

// PercentageToOrderedListItem finds the item that most closely matches a
// percentage in an ordered list. Given ["low", "medium", "high",
// "very_high"]: 1-25=low, 26-50=medium, 51-75=high, 76-100=very_high.
func PercentageToOrderedListItem(ordered []string, percentage int) (string, error) {
	if len(ordered) == 0 {
		return "", ErrEmptyList
	}
	for i, item := range ordered {
		upperBound := ((i + 1) * 100) / len(ordered)
		if percentage <= upperBound {
			return item, nil
		}
	}
	return ordered[len(ordered)-1], nil
}

// ProcessRange expands a function's range definition (min/max/step) into
// the discrete supported values. The max is always included even when the
// step does not land on it.
func ProcessRange(rangeDef map[string]any) ([]int, error) {
	rng, ok := rangeDef["range"].(map[string]any)
	if !ok {
		return nil, ErrInvalidRange
	}
	minVal, okMin := toInt(rng["min"])
	maxVal, okMax := toInt(rng["max"])
	step, okStep := toInt(rng["step"])
	if !okMin || !okMax || !okStep || step <= 0 {
		return nil, ErrInvalidRange
	}

	var supported []int
	if minVal == maxVal {
		return []int{maxVal}, nil
	}
	for v := minVal; v < maxVal; v += step {
		supported = append(supported, v)
	}
	if len(supported) == 0 || supported[len(supported)-1] != maxVal {
		supported = append(supported, maxVal)
	}
	return supported, nil
}

// toInt normalises the numeric types JSON decoding produces.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
