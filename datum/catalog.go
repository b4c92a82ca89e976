package datum

import (
	"github.com/zoobzio/shroud"
)

// Schemas returns the schema of every standard kind.
func Schemas() []shroud.Schema {
	return []shroud.Schema{
		{
			Kind: KindGps,
			New:  func() shroud.Record { return &GpsDatum{} },
			Fields: append(baseFields(),
				shroud.Field("Location",
					func(d *GpsDatum) shroud.Coordinate { return d.Location },
					func(d *GpsDatum, v shroud.Coordinate) { d.Location = v },
					shroud.RoundToNearestCity(),
					shroud.CoordinateOffset(0.5),
					shroud.RoundHundredths(),
					shroud.RoundTenths(),
					shroud.AESEncrypt(),
				),
				shroud.Field("Accuracy",
					func(d *GpsDatum) float64 { return d.Accuracy },
					func(d *GpsDatum, v float64) { d.Accuracy = v },
					shroud.RoundOnes(), shroud.RoundTens(),
				),
				shroud.Field("Altitude",
					func(d *GpsDatum) float64 { return d.Altitude },
					func(d *GpsDatum, v float64) { d.Altitude = v },
					shroud.RoundTens(), shroud.RoundHundreds(),
				),
			),
		},
		{
			Kind: KindAccelerometer,
			New:  func() shroud.Record { return &AccelerometerDatum{} },
			Fields: append(baseFields(),
				axis("X", func(d *AccelerometerDatum) *float64 { return &d.X }),
				axis("Y", func(d *AccelerometerDatum) *float64 { return &d.Y }),
				axis("Z", func(d *AccelerometerDatum) *float64 { return &d.Z }),
				shroud.Computed("Magnitude", (*AccelerometerDatum).Magnitude),
			),
		},
		{
			Kind: KindBattery,
			New:  func() shroud.Record { return &BatteryDatum{} },
			Fields: append(baseFields(),
				shroud.Field("Level",
					func(d *BatteryDatum) float64 { return d.Level },
					func(d *BatteryDatum, v float64) { d.Level = v },
					shroud.RoundTens(), shroud.RoundOnes(),
				).Display("Battery level"),
			),
		},
		{
			Kind: KindScript,
			New:  func() shroud.Record { return &ScriptDatum{} },
			Fields: append(baseFields(),
				shroud.Field("ScriptId",
					func(d *ScriptDatum) string { return d.ScriptId },
					func(d *ScriptDatum, v string) { d.ScriptId = v },
				),
				shroud.Field("RunId",
					func(d *ScriptDatum) string { return d.RunId },
					func(d *ScriptDatum, v string) { d.RunId = v },
					shroud.Sha256Hash(),
				),
				shroud.Field("Response",
					func(d *ScriptDatum) string { return d.Response },
					func(d *ScriptDatum, v string) { d.Response = v },
					shroud.Sha256Hash(), shroud.AESEncrypt(), shroud.MaskName(),
				),
				shroud.Field("Location",
					func(d *ScriptDatum) *shroud.Coordinate { return d.Location },
					func(d *ScriptDatum, v *shroud.Coordinate) { d.Location = v },
					shroud.RoundToNearestCity(), shroud.RoundHundredths(),
				),
			),
		},
	}
}

// Catalog returns a catalog with every standard kind registered.
func Catalog() *shroud.Catalog {
	return shroud.NewCatalog().MustRegister(Schemas()...)
}

func axis(name string, ptr func(*AccelerometerDatum) *float64) shroud.FieldDecl {
	return shroud.Field(name,
		func(d *AccelerometerDatum) float64 { return *ptr(d) },
		func(d *AccelerometerDatum, v float64) { *ptr(d) = v },
		shroud.RoundTenths(), shroud.RoundOnes(),
	)
}
