package interpreter

import (
	"math"
	"testing"
)

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"zero", 0.0, true},
		{"empty string", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTruthy(tt.v); got != tt.want {
				t.Errorf("isTruthy(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Value
		want    bool
	}{
		{"nil == nil", nil, nil, true},
		{"nil == false", nil, false, false},
		{"nil == 0", nil, 0.0, false},
		{"nil == empty string", nil, "", false},
		{"1 == 1", 1.0, 1.0, true},
		{"1 == 2", 1.0, 2.0, false},
		{"NaN != NaN", math.NaN(), math.NaN(), false},
		{`"a" == "a"`, "a", "a", true},
		{"different instances", &LoxInstance{class: &LoxClass{Name: "A"}}, &LoxInstance{class: &LoxClass{Name: "A"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := valuesEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("valuesEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestValuesEqual_SameInstanceIsEqual(t *testing.T) {
	instance := &LoxInstance{class: &LoxClass{Name: "A"}}
	if !valuesEqual(instance, instance) {
		t.Error("valuesEqual(instance, instance) = false, want true (referential identity)")
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{nil, "nil"},
		{true, "true"},
		{false, "false"},
		{5.0, "5"},
		{5.5, "5.5"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := stringify(tt.v); got != tt.want {
			t.Errorf("stringify(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestStringify_Instance(t *testing.T) {
	instance := &LoxInstance{class: &LoxClass{Name: "Bagel"}, fields: map[string]Value{}}
	if got, want := stringify(instance), "Bagel instance"; got != want {
		t.Errorf("stringify(instance) = %q, want %q", got, want)
	}
}
