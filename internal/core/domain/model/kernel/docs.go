// Package kernel provides the value objects shared by the courier and order aggregates:
//   - UUID: identifier of couriers and orders
//   - GeoPoint: a validated (longitude, latitude) pair with great-circle distance
//   - ValidateSearchRadius: the check applied to client-chosen radii
//
// Both are immutable and safe for concurrent use. Their zero values fail Validate.
package kernel
