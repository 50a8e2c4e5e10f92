package stormbus

import "testing"

func TestFilterCombinators(t *testing.T) {
	base := BaseEvent{}
	other := OtherEvent{Amount: 10}

	tests := []struct {
		name   string
		filter FilterFunc
		event  Event
		want   bool
	}{
		{"ByName match", FilterByName("base"), base, true},
		{"ByName mismatch", FilterByName("base"), other, false},
		{"ByName promoted through embedding", FilterByName("base"), DerivedEvent{Seq: 1}, true},
		{"ByNamePrefix match", FilterByNamePrefix("ba"), base, true},
		{"ByNamePrefix mismatch", FilterByNamePrefix("ot"), base, false},
		{"And all pass", FilterAnd(FilterAll(), FilterByName("base")), base, true},
		{"And one fails", FilterAnd(FilterAll(), FilterNone()), base, false},
		{"And empty passes", FilterAnd(), base, true},
		{"Or one passes", FilterOr(FilterNone(), FilterByName("base")), base, true},
		{"Or none pass", FilterOr(FilterNone(), FilterByName("other")), base, false},
		{"Or empty fails", FilterOr(), base, false},
		{"Not inverts", FilterNot(FilterNone()), base, true},
		{"All", FilterAll(), other, true},
		{"None", FilterNone(), other, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter(tt.event); got != tt.want {
				t.Errorf("filter(%s) = %v, want %v", tt.event.EventName(), got, tt.want)
			}
		})
	}
}

func TestFilterExpr(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		event Event
		want  bool
	}{
		{"name equality", `name == "other"`, OtherEvent{}, true},
		{"name inequality", `name == "other"`, BaseEvent{}, false},
		{"field access", `event.Amount > 100`, OtherEvent{Amount: 150}, true},
		{"field below threshold", `event.Amount > 100`, OtherEvent{Amount: 50}, false},
		{"combined", `name == "other" && event.Amount >= 10`, OtherEvent{Amount: 10}, true},
		{"missing field rejects", `event.Missing > 0`, BaseEvent{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := FilterExpr(tt.src)
			if err != nil {
				t.Fatalf("FilterExpr(%q) failed: %v", tt.src, err)
			}
			if got := f(tt.event); got != tt.want {
				t.Errorf("filter(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestFilterExpr_CompileError(t *testing.T) {
	if _, err := FilterExpr(`name ==`); err == nil {
		t.Fatal("expected a compile error for a malformed expression")
	}
}

func TestFilterExpr_NonBoolRejected(t *testing.T) {
	if _, err := FilterExpr(`1 + 1`); err == nil {
		t.Fatal("expected a compile error for a non-boolean expression")
	}
}
