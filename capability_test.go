package shroud

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestRound(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		name  string
		tr    Transform
		input any
		want  any
	}{
		{"thousands", RoundThousands(), 12345.0, 12000.0},
		{"hundreds", RoundHundreds(), 12355.0, 12400.0},
		{"tens", RoundTens(), 87, 90},
		{"ones", RoundOnes(), 2.5, 3.0},
		{"tenths", RoundTenths(), 1.26, 1.3},
		{"hundredths", RoundHundredths(), 38.0293, 38.03},
		{"int64", RoundTens(), int64(44), int64(40)},
		{"int32", RoundHundreds(), int32(151), int32(200)},
		{"float32", RoundOnes(), float32(1.6), float32(2)},
		{"negative", RoundTenths(), -78.4767, -78.5},
		{"coordinate", RoundTenths(), Coordinate{Lat: 38.0293, Lon: -78.4767}, Coordinate{Lat: 38.0, Lon: -78.5}},
		{"coordinate pointer", RoundOnes(), &Coordinate{Lat: 1.4, Lon: 1.6}, Coordinate{Lat: 1, Lon: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tr.Apply(context.Background(), s, tt.input)
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Apply(%v) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRound_IntegersExact(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		name  string
		tr    Transform
		input any
		want  any
	}{
		{"above 2^53 ones", RoundOnes(), int64(9007199254740993), int64(9007199254740993)},
		{"above 2^53 tens", RoundTens(), int64(9007199254740995), int64(9007199254741000)},
		{"negative half", RoundTens(), -15, -20},
		{"fractional unit", RoundTenths(), int64(7), int64(7)},
		{"int64 overflow", RoundTens(), int64(math.MaxInt64), int64(9223372036854775800)},
		{"int32 overflow", RoundThousands(), int32(math.MaxInt32), int32(2147483000)},
		{"int64 min", RoundTens(), int64(math.MinInt64), int64(-9223372036854775800)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tr.Apply(context.Background(), s, tt.input)
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Apply(%v) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRound_InvalidUnit(t *testing.T) {
	for _, unit := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Round(%v) did not panic", unit)
				}
			}()
			Round("Bad", unit)
		}()
	}
}

func TestRound_Unsupported(t *testing.T) {
	_, err := RoundOnes().Apply(context.Background(), testSession(t), "12")
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("Apply(string) error = %v, want ErrUnsupportedValue", err)
	}
}

func TestRoundToNearestCity(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		input any
		want  string
	}{
		{Coordinate{Lat: 38.03, Lon: -78.48}, "Charlottesville, VA"},
		{Coordinate{Lat: 37.6, Lon: -77.5}, "Richmond, VA"},
		{&Coordinate{Lat: 51.3, Lon: 0.1}, "London, UK"},
		{Coordinate{Lat: -34, Lon: 150}, "Sydney, AU"},
	}

	for _, tt := range tests {
		got, err := RoundToNearestCity().Apply(context.Background(), s, tt.input)
		if err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
		if got != tt.want {
			t.Errorf("Apply(%v) = %v, want %s", tt.input, got, tt.want)
		}
	}
}

func TestNearestCity_Errors(t *testing.T) {
	s := testSession(t)

	if _, err := NearestCity(nil).Apply(context.Background(), s, Coordinate{}); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("empty gazetteer error = %v", err)
	}
	if _, err := RoundToNearestCity().Apply(context.Background(), s, 1.0); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("Apply(float) error = %v", err)
	}
}

func TestDistance(t *testing.T) {
	// Charlottesville to Richmond is roughly 106 km.
	d := Distance(DefaultGazetteer[0].Location, DefaultGazetteer[1].Location)
	if d < 100 || d > 115 {
		t.Errorf("Distance() = %.1f km", d)
	}
	if Distance(Coordinate{Lat: 1, Lon: 1}, Coordinate{Lat: 1, Lon: 1}) != 0 {
		t.Error("Distance() to self should be 0")
	}
}

func TestCoordinateOffset(t *testing.T) {
	s := testSession(t)
	tr := CoordinateOffset(0.5)
	in := Coordinate{Lat: 38.03, Lon: -78.48}

	out, err := tr.Apply(context.Background(), s, in)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	shifted := out.(Coordinate)
	if shifted == in {
		t.Error("Apply() should move the coordinate")
	}
	if math.Abs(shifted.Lat-in.Lat) > 0.5 || math.Abs(shifted.Lon-in.Lon) > 0.5 {
		t.Errorf("Apply() moved %v beyond 0.5 degrees", shifted)
	}

	// Stable within a session, so relative movement survives.
	again, _ := tr.Apply(context.Background(), s, Coordinate{Lat: 39.03, Lon: -78.48})
	if d := again.(Coordinate).Lat - shifted.Lat; math.Abs(d-1) > 1e-9 {
		t.Errorf("offset not stable within session: delta %v", d)
	}

	back, err := tr.Revert(context.Background(), s, shifted)
	if err != nil {
		t.Fatalf("Revert() error: %v", err)
	}
	got := back.(Coordinate)
	if math.Abs(got.Lat-in.Lat) > 1e-9 || math.Abs(got.Lon-in.Lon) > 1e-9 {
		t.Errorf("Revert() = %v, want %v", got, in)
	}
}

func TestTimeOffset(t *testing.T) {
	s := testSession(t)
	limit := 24 * time.Hour
	tr := TimeOffset(limit)
	in := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	out, err := tr.Apply(context.Background(), s, in)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	shifted := out.(time.Time)
	if d := shifted.Sub(in); d > limit || d < -limit {
		t.Errorf("offset %v exceeds %v", d, limit)
	}

	later, _ := tr.Apply(context.Background(), s, in.Add(time.Hour))
	if later.(time.Time).Sub(shifted) != time.Hour {
		t.Error("intervals within a session should be preserved")
	}

	back, err := tr.Revert(context.Background(), s, shifted)
	if err != nil {
		t.Fatalf("Revert() error: %v", err)
	}
	if !back.(time.Time).Equal(in) {
		t.Errorf("Revert() = %v, want %v", back, in)
	}

	if _, err := tr.Apply(context.Background(), s, "2024-05-01"); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("Apply(string) error = %v, want ErrUnsupportedValue", err)
	}
}

func TestSession_Defaults(t *testing.T) {
	s, err := NewSession()
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	if s.ID() == "" {
		t.Error("ID() should default to a random id")
	}
	other, _ := NewSession()
	if s.ID() == other.ID() {
		t.Error("default ids should differ")
	}
}

func TestSession_Key(t *testing.T) {
	s := testSession(t)

	k1, err := s.Key("purpose", 32)
	if err != nil {
		t.Fatalf("Key() error: %v", err)
	}
	k2, _ := s.Key("purpose", 32)
	k3, _ := s.Key("other", 32)

	if string(k1) != string(k2) {
		t.Error("Key() should be deterministic per purpose")
	}
	if string(k1) == string(k3) {
		t.Error("Key() should differ across purposes")
	}
	if len(k1) != 32 {
		t.Errorf("len(Key()) = %d, want 32", len(k1))
	}

	if _, err := s.Key("too-long", 255*32+1); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Key(oversize) error = %v, want ErrInvalidKey", err)
	}
}

func TestSession_Unit(t *testing.T) {
	s := testSession(t)
	for _, purpose := range []string{"a", "b", "c", "d", "e"} {
		u, err := s.Unit(purpose)
		if err != nil {
			t.Fatalf("Unit() error: %v", err)
		}
		if u < -1 || u >= 1 {
			t.Errorf("Unit(%q) = %v, out of [-1, 1)", purpose, u)
		}
	}
}

func TestSession_SecretIsCopied(t *testing.T) {
	secret := []byte("0123456789abcdef")
	s, _ := NewSession(WithSessionID("x"), WithSecret(secret))
	before, _ := s.Key("p", 16)

	secret[0] = 'X'
	after, _ := s.Key("p", 16)
	if string(before) != string(after) {
		t.Error("mutating the caller's slice should not change the session")
	}
}

func TestNewTransform(t *testing.T) {
	tr := NewTransform("Upper", func(_ context.Context, _ *Session, v any) (any, error) {
		return v.(string) + "!", nil
	})
	if tr.Name() != "Upper" {
		t.Errorf("Name() = %q", tr.Name())
	}
	got, _ := tr.Apply(context.Background(), nil, "hi")
	if got != "hi!" {
		t.Errorf("Apply() = %v", got)
	}
	if transformName(nil) != "" {
		t.Error("transformName(nil) should be empty")
	}
}

func TestTextOf(t *testing.T) {
	if s, ok := textOf(Kind("GpsDatum")); !ok || s != "GpsDatum" {
		t.Errorf("textOf(Stringer) = %q, %v", s, ok)
	}
	if _, ok := textOf(1); ok {
		t.Error("textOf(int) should fail")
	}
}
