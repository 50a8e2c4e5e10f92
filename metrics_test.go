package stormbus

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/stormbus/hierarchy"
)

func gatherValues(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	values := make(map[string]float64, len(families))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	return values
}

func TestCollector(t *testing.T) {
	b := New(WithFaultSink(&recordingSink{}))
	mustSubscribe(t, b, hierarchy.TypeOf[BaseEvent](), &countListener{})
	mustSubscribe(t, b, hierarchy.TypeOf[BaseEvent](), &countListener{err: errors.New("fail")})

	b.Broadcast(BaseEvent{})
	b.Broadcast(BaseEvent{})

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(NewCollector(b, "")); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	values := gatherValues(t, reg)
	want := map[string]float64{
		"stormbus_events_published_total":   2,
		"stormbus_listeners_executed_total": 3, // failing listener removed after the first pass
		"stormbus_listener_errors_total":    1,
		"stormbus_listener_panics_total":    0,
		"stormbus_handles_removed_total":    1,
		"stormbus_active_handles":           1,
		"stormbus_event_types":              1,
	}
	for name, v := range want {
		got, ok := values[name]
		if !ok {
			t.Errorf("metric %s not gathered", name)
			continue
		}
		if got != v {
			t.Errorf("metric %s = %v, want %v", name, got, v)
		}
	}
}

func TestCollector_CustomNamespace(t *testing.T) {
	b := New()
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(NewCollector(b, "app")); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	values := gatherValues(t, reg)
	if _, ok := values["app_events_published_total"]; !ok {
		t.Error("expected metrics under the custom namespace")
	}
}

func TestCollector_RegistersOnce(t *testing.T) {
	b := New()
	c := NewCollector(b, "")
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("first Register() failed: %v", err)
	}
	if err := reg.Register(c); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
