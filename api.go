// Package shroud provides anonymization-aware serialization for sensed data.
//
// Records of heterogeneous kinds (GPS fixes, accelerometer samples, survey
// responses) are serialized through a Processor. For every stored field the
// Processor consults a Registry of user-selected transforms and emits the
// transformed value instead of the raw one. The in-memory record is never
// changed, except that its idempotence marker is set once the record has
// been through a successful pass; records whose marker is already set are
// re-emitted verbatim, so a transform is never applied twice.
//
// # Building Blocks
//
//   - Catalog: static per-kind field declarations and the transforms each
//     field may select. "None" is always the implicit first option.
//   - Registry: the live FieldRef -> Transform mapping for one session,
//     safe for concurrent assignment and lookup.
//   - Session: the execution context transforms read keys and offsets from.
//   - Processor: Store (egress with anonymization) and Load (ingress,
//     restoring the marker), plus the selection surface used by UIs.
//
// # Declaring Kinds
//
//	type GpsDatum struct {
//	    shroud.Marker
//	    Location shroud.Coordinate
//	}
//
//	func (*GpsDatum) Kind() shroud.Kind { return "GpsDatum" }
//
//	cat := shroud.NewCatalog().MustRegister(shroud.Schema{
//	    Kind: "GpsDatum",
//	    New:  func() shroud.Record { return &GpsDatum{} },
//	    Fields: []shroud.FieldDecl{
//	        shroud.Field("Location",
//	            func(d *GpsDatum) shroud.Coordinate { return d.Location },
//	            func(d *GpsDatum, v shroud.Coordinate) { d.Location = v },
//	            shroud.RoundToNearestCity(), shroud.RoundHundredths()),
//	    },
//	})
//
// # Serializing
//
//	proc, _ := shroud.NewProcessor(json.New(), cat)
//	_ = proc.SelectByName(shroud.Ref("GpsDatum", "Location"), shroud.NameRoundToNearestCity)
//
//	data, _ := proc.Store(ctx, &GpsDatum{Location: shroud.Coordinate{Lat: 38.03, Lon: -78.48}})
//	// {"$kind":"GpsDatum","Location":"Charlottesville, VA","Transformed":true}
//
// # Persistence and Migration
//
// SaveState and RestoreState convert a Registry to and from (kind, field,
// transform) triples. State may also carry entries of the older
// "Kind-Field:TransformName" encoding; they are migrated once on restore
// and never overwrite structured entries. MigrateLegacy exposes the same
// migration directly.
//
// # Codec Providers
//
// The following codec implementations are available as subpackages:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
//
// # Built-in Transforms
//
//   - Hashing: Sha256Hash, Sha512Hash (session-keyed HMAC), Argon2Hash, BcryptHash
//   - Masking: MaskEmail, MaskPhone, MaskIP, MaskName, MaskUUID
//   - Encryption (reversible): AESEncrypt, RSAEncrypt
//   - Rounding: RoundThousands ... RoundHundredths
//   - Location: RoundToNearestCity, CoordinateOffset (reversible)
//   - Time: TimeOffset (reversible)
//
// # Standard Kinds and Tooling
//
// Package datum declares the standard sensed-data kinds (GPS,
// accelerometer, battery, survey script) and their catalog. Package
// testing provides fixtures for tests of code built on shroud. The shroud
// command persists per-session assignments in SQLite and anonymizes
// payloads from the command line.
package shroud
