package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
)

func fanSnapshot(id string) *device.Snapshot {
	return &device.Snapshot{
		ID:          id,
		DeviceID:    "dev-" + id,
		DeviceClass: "fan",
		Functions: []device.Function{
			{
				"functionClass":    "fan-speed",
				"functionInstance": "fan-speed",
				"values": []any{
					map[string]any{"name": "speed-4-000"},
					map[string]any{"name": "speed-4-100"},
					map[string]any{"name": "speed-4-25"},
					map[string]any{"name": "speed-4-50"},
					map[string]any{"name": "speed-4-75"},
				},
			},
			{
				"functionClass":    "fan-reverse",
				"functionInstance": "fan-reverse",
			},
			{
				"functionClass":    "toggle",
				"functionInstance": "comfort-breeze",
			},
		},
		States: []device.State{
			{FunctionClass: "power", FunctionInstance: "fan-power", Value: "on"},
			{FunctionClass: "fan-speed", FunctionInstance: "fan-speed", Value: "speed-4-25"},
			{FunctionClass: "fan-reverse", FunctionInstance: "fan-reverse", Value: "forward"},
			{FunctionClass: "toggle", FunctionInstance: "comfort-breeze", Value: "disabled"},
			{FunctionClass: "available", Value: true},
		},
	}
}

func newTestFan(t *testing.T, pusher *fakePusher) *FanController {
	t.Helper()
	c := NewFanController(pusher)
	c.now = fixedClock
	if _, err := c.InitializeElem(fanSnapshot("fan-1")); err != nil {
		t.Fatalf("InitializeElem: %v", err)
	}
	return c
}

func TestFanInitialize(t *testing.T) {
	c := newTestFan(t, &fakePusher{})

	fan, err := c.Get("fan-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !fan.IsOn() {
		t.Error("fan should be on")
	}
	if !fan.Available {
		t.Error("fan should be available")
	}
	if fan.Speed == nil {
		t.Fatal("fan should have a speed feature")
	}
	if fan.Speed.Speed != 25 {
		t.Errorf("speed = %d, want 25", fan.Speed.Speed)
	}
	// The off entry never counts as a speed, and unpadded step names
	// still come out in wire order.
	want := []string{"speed-4-25", "speed-4-50", "speed-4-75", "speed-4-100"}
	if len(fan.Speed.Speeds) != len(want) {
		t.Fatalf("speeds = %v, want %v", fan.Speed.Speeds, want)
	}
	for i, name := range want {
		if fan.Speed.Speeds[i] != name {
			t.Errorf("speeds[%d] = %q, want %q", i, fan.Speed.Speeds[i], name)
		}
	}
	if fan.Direction == nil || !fan.Direction.Forward {
		t.Error("fan should be running forward")
	}
	if fan.Preset == nil || fan.Preset.Enabled {
		t.Error("preset should exist and be disabled")
	}
	if fan.Preset.FuncClass != "toggle" || fan.Preset.FuncInstance != "comfort-breeze" {
		t.Errorf("preset carries %s/%s, want toggle/comfort-breeze", fan.Preset.FuncClass, fan.Preset.FuncInstance)
	}
}

func TestFanUpdateSpeedChange(t *testing.T) {
	c := newTestFan(t, &fakePusher{})

	_, changed, err := c.UpdateElem(&device.Snapshot{
		ID: "fan-1",
		States: []device.State{
			{FunctionClass: "fan-speed", FunctionInstance: "fan-speed", Value: "speed-4-75"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateElem: %v", err)
	}
	if len(changed) != 1 || changed[0] != "speed" {
		t.Errorf("changed = %v, want [speed]", changed)
	}

	fan, _ := c.Get("fan-1")
	if fan.Speed.Speed != 75 {
		t.Errorf("speed = %d, want 75", fan.Speed.Speed)
	}
}

func TestFanUpdateNoChange(t *testing.T) {
	c := newTestFan(t, &fakePusher{})

	_, changed, err := c.UpdateElem(fanSnapshot("fan-1"))
	if err != nil {
		t.Fatalf("UpdateElem: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("changed = %v, want none for identical states", changed)
	}
}

func TestFanUpdateUnknownDevice(t *testing.T) {
	c := NewFanController(&fakePusher{})
	if _, _, err := c.UpdateElem(fanSnapshot("ghost")); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestFanSetSpeed(t *testing.T) {
	pusher := &fakePusher{}
	c := newTestFan(t, pusher)

	if err := c.SetSpeed(context.Background(), "fan-1", 75); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}

	call := pusher.lastCall(t)
	if call.deviceID != "fan-1" {
		t.Errorf("deviceID = %q, want fan-1", call.deviceID)
	}
	speed := findValue(t, call, "fan-speed")
	if speed.Value != "speed-4-75" {
		t.Errorf("pushed speed = %v, want speed-4-75", speed.Value)
	}
	if speed.FunctionInstance != "fan-speed" {
		t.Errorf("pushed instance = %q, want fan-speed", speed.FunctionInstance)
	}
	power := findValue(t, call, "power")
	if power.Value != "on" {
		t.Errorf("pushed power = %v, want on", power.Value)
	}

	// The echoed response folds straight back into the model.
	fan, _ := c.Get("fan-1")
	if fan.Speed.Speed != 75 {
		t.Errorf("speed after push = %d, want 75", fan.Speed.Speed)
	}
}

func TestFanSetSpeedZeroTurnsOff(t *testing.T) {
	pusher := &fakePusher{}
	c := newTestFan(t, pusher)

	if err := c.SetSpeed(context.Background(), "fan-1", 0); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}

	call := pusher.lastCall(t)
	power := findValue(t, call, "power")
	if power.Value != "off" {
		t.Errorf("pushed power = %v, want off", power.Value)
	}
	for _, st := range call.values {
		if st.FunctionClass == "fan-speed" {
			t.Errorf("speed zero should not push a fan-speed value, got %v", st.Value)
		}
	}
}

func TestFanTurnOnOff(t *testing.T) {
	pusher := &fakePusher{}
	c := newTestFan(t, pusher)

	if err := c.TurnOff(context.Background(), "fan-1"); err != nil {
		t.Fatalf("TurnOff: %v", err)
	}
	power := findValue(t, pusher.lastCall(t), "power")
	if power.Value != "off" {
		t.Errorf("pushed power = %v, want off", power.Value)
	}
	if fan, _ := c.Get("fan-1"); fan.IsOn() {
		t.Error("fan should be off after TurnOff")
	}

	if err := c.TurnOn(context.Background(), "fan-1"); err != nil {
		t.Fatalf("TurnOn: %v", err)
	}
	if fan, _ := c.Get("fan-1"); !fan.IsOn() {
		t.Error("fan should be on after TurnOn")
	}
}

func TestFanSetPreset(t *testing.T) {
	pusher := &fakePusher{}
	c := newTestFan(t, pusher)

	if err := c.SetPreset(context.Background(), "fan-1", true); err != nil {
		t.Fatalf("SetPreset: %v", err)
	}

	call := pusher.lastCall(t)
	preset := findValue(t, call, "toggle")
	if preset.Value != "enabled" {
		t.Errorf("pushed preset = %v, want enabled", preset.Value)
	}
	if preset.FunctionInstance != "comfort-breeze" {
		t.Errorf("pushed instance = %q, want comfort-breeze", preset.FunctionInstance)
	}

	fan, _ := c.Get("fan-1")
	if !fan.Preset.Enabled {
		t.Error("preset should be enabled after push")
	}
}

func TestFanSetDirection(t *testing.T) {
	pusher := &fakePusher{}
	c := newTestFan(t, pusher)

	if err := c.SetDirection(context.Background(), "fan-1", false); err != nil {
		t.Fatalf("SetDirection: %v", err)
	}

	dir := findValue(t, pusher.lastCall(t), "fan-reverse")
	if dir.Value != "reverse" {
		t.Errorf("pushed direction = %v, want reverse", dir.Value)
	}
	fan, _ := c.Get("fan-1")
	if fan.Direction.Forward {
		t.Error("direction should be reverse after push")
	}
}

func TestFanAppliedValueWins(t *testing.T) {
	// The service may apply something other than what was requested;
	// the model follows the applied values.
	pusher := &fakePusher{reply: []device.State{
		{FunctionClass: "fan-speed", FunctionInstance: "fan-speed", Value: "speed-4-50"},
	}}
	c := newTestFan(t, pusher)

	if err := c.SetSpeed(context.Background(), "fan-1", 100); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}
	fan, _ := c.Get("fan-1")
	if fan.Speed.Speed != 50 {
		t.Errorf("speed = %d, want the applied 50", fan.Speed.Speed)
	}
}

func TestFanPushError(t *testing.T) {
	wantErr := errors.New("boom")
	pusher := &fakePusher{err: wantErr}
	c := newTestFan(t, pusher)

	if err := c.TurnOff(context.Background(), "fan-1"); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped push error", err)
	}
	// The model keeps its last known state on a failed push.
	if fan, _ := c.Get("fan-1"); !fan.IsOn() {
		t.Error("fan should still read on after failed push")
	}
}

func TestFanRemove(t *testing.T) {
	c := newTestFan(t, &fakePusher{})
	c.Remove("fan-1")
	if c.Has("fan-1") {
		t.Error("fan should be gone after Remove")
	}
	c.Remove("fan-1") // absent id is a no-op
}

func TestSpeedLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"speed-4-25", "speed-4-100", true},
		{"speed-4-100", "speed-4-25", false},
		{"speed-4-50", "speed-4-75", true},
		{"fan-speed-6-016", "fan-speed-6-100", true},
		{"speed-4-25", "speed-4-25", false},
		{"speed-4", "speed-4-25", true},
	}
	for _, tt := range tests {
		if got := speedLess(tt.a, tt.b); got != tt.want {
			t.Errorf("speedLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
