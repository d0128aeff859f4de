// Package structmorph turns loosely-typed external data into typed, validated
// schema structs.
//
// Define your domain types as Go structs embedding schema.Base, and cast
// maps decoded from JSON or msgpack, other structs, or database rows into
// them, nested embeds and associations included. Every coercion failure is
// collected on a changeset instead of aborting the cast.
//
// The module is organized into five packages:
//
//   - [github.com/SamHutchings/structmorph/schema]: schema metadata, struct tags, field introspection, registry
//   - [github.com/SamHutchings/structmorph/changeset]: cast engine with coercion, nested casting, validation, apply
//   - [github.com/SamHutchings/structmorph/morph]: convenience layer for casting, projection, and map filtering
//   - [github.com/SamHutchings/structmorph/sqlsource]: database rows as cast input
//   - [github.com/SamHutchings/structmorph/morphgen]: registration code generator
//
// Every operation is a synchronous, pure in-memory transformation; the module
// performs no I/O outside sqlsource and holds no state beyond the schema
// registry.
package structmorph
