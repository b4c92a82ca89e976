package shroud

import (
	"encoding/json"
	"testing"
)

func TestDocument_Pairs(t *testing.T) {
	doc := &Document{Kind: kindGps}
	doc.add("Location", "Charlottesville, VA")
	doc.add(MarkerField, true)

	pairs := doc.Pairs()
	if len(pairs) != 3 {
		t.Fatalf("Pairs() len = %d, want 3", len(pairs))
	}
	if pairs[0].Key != KindKey || pairs[0].Value != "GpsDatum" {
		t.Errorf("Pairs()[0] = %+v, want kind first", pairs[0])
	}
	if pairs[2].Key != MarkerField {
		t.Errorf("Pairs()[2] = %+v, want marker last", pairs[2])
	}
}

func TestDocument_GetAndMap(t *testing.T) {
	doc := &Document{Kind: kindAccel}
	doc.add("X", 1.5)

	if v, ok := doc.Get("X"); !ok || v != 1.5 {
		t.Errorf("Get(X) = %v, %v", v, ok)
	}
	if _, ok := doc.Get("Y"); ok {
		t.Error("Get(Y) should report missing")
	}

	m := doc.Map()
	if m[KindKey] != "AccelDatum" || m["X"] != 1.5 {
		t.Errorf("Map() = %v", m)
	}
}

func TestDocument_MarshalJSON_Order(t *testing.T) {
	doc := &Document{Kind: kindGps}
	doc.add("Zeta", 1)
	doc.add("Alpha", Coordinate{Lat: 1, Lon: 2})
	doc.add(MarkerField, true)

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"$kind":"GpsDatum","Zeta":1,"Alpha":{"lat":1,"lon":2},"Transformed":true}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestDocument_MarshalJSON_Error(t *testing.T) {
	doc := &Document{Kind: kindGps}
	doc.add("Bad", make(chan int))

	if _, err := json.Marshal(doc); err == nil {
		t.Error("Marshal() should fail on unsupported values")
	}
}

func TestIsAbsent(t *testing.T) {
	var nilPtr *Coordinate
	var nilSlice []string
	var nilMap map[string]int

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"nil pointer", nilPtr, true},
		{"nil slice", nilSlice, true},
		{"nil map", nilMap, true},
		{"zero float", 0.0, false},
		{"zero coordinate", Coordinate{}, false},
		{"text", "x", false},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAbsent(tt.value); got != tt.want {
				t.Errorf("isAbsent(%#v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
