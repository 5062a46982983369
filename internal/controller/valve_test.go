package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
)

// valveSnapshot models a dual-spigot watering timer.
func valveSnapshot(id string) *device.Snapshot {
	return &device.Snapshot{
		ID:          id,
		DeviceID:    "dev-" + id,
		DeviceClass: "water-timer",
		States: []device.State{
			{FunctionClass: "toggle", FunctionInstance: "spigot-1", Value: "off"},
			{FunctionClass: "toggle", FunctionInstance: "spigot-2", Value: "off"},
			{FunctionClass: "available", Value: true},
		},
	}
}

func newTestValve(t *testing.T, pusher *fakePusher) *ValveController {
	t.Helper()
	c := NewValveController(pusher)
	c.now = fixedClock
	if _, err := c.InitializeElem(valveSnapshot("valve-1")); err != nil {
		t.Fatalf("InitializeElem: %v", err)
	}
	return c
}

func TestValveInitialize(t *testing.T) {
	c := newTestValve(t, &fakePusher{})

	valve, err := c.Get("valve-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(valve.Open) != 2 {
		t.Fatalf("spigots = %d, want 2", len(valve.Open))
	}
	if valve.Open["spigot-1"].Open || valve.Open["spigot-2"].Open {
		t.Error("both spigots should start closed")
	}
}

func TestValveTurnOnSpigot(t *testing.T) {
	pusher := &fakePusher{}
	c := newTestValve(t, pusher)

	if err := c.TurnOn(context.Background(), "valve-1", "spigot-2"); err != nil {
		t.Fatalf("TurnOn: %v", err)
	}

	st := findValue(t, pusher.lastCall(t), "toggle")
	if st.FunctionInstance != "spigot-2" {
		t.Errorf("pushed instance = %q, want spigot-2", st.FunctionInstance)
	}
	if st.Value != "on" {
		t.Errorf("pushed value = %v, want on", st.Value)
	}

	valve, _ := c.Get("valve-1")
	if valve.Open["spigot-1"].Open {
		t.Error("spigot-1 should stay closed")
	}
	if !valve.Open["spigot-2"].Open {
		t.Error("spigot-2 should be open after push")
	}
}

func TestValveUpdateOpen(t *testing.T) {
	c := newTestValve(t, &fakePusher{})

	_, changed, err := c.UpdateElem(&device.Snapshot{
		ID: "valve-1",
		States: []device.State{
			{FunctionClass: "toggle", FunctionInstance: "spigot-1", Value: "on"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateElem: %v", err)
	}
	if len(changed) != 1 || changed[0] != "open" {
		t.Errorf("changed = %v, want [open]", changed)
	}
}

func TestValveUnknownInstance(t *testing.T) {
	c := newTestValve(t, &fakePusher{})

	err := c.TurnOff(context.Background(), "valve-1", "spigot-9")
	if !errors.Is(err, ErrUnknownInstance) {
		t.Errorf("err = %v, want ErrUnknownInstance", err)
	}
}

func TestValveUpdateIgnoresUnknownSpigot(t *testing.T) {
	c := newTestValve(t, &fakePusher{})

	_, changed, err := c.UpdateElem(&device.Snapshot{
		ID: "valve-1",
		States: []device.State{
			{FunctionClass: "toggle", FunctionInstance: "spigot-9", Value: "on"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateElem: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("changed = %v, want none for an unknown spigot", changed)
	}
}
