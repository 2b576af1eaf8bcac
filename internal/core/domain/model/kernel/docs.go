// Package kernel provides the shared value objects of the fulfillment domain.
//
// The package includes:
//   - UUID: identifier of orders, wrapping github.com/google/uuid
//   - UserID: opaque identifier issued by the identity provider (customers, admins, delivery agents)
//   - Money: a non-negative decimal amount rounded to two places, backed by github.com/shopspring/decimal
//   - GeoPoint: an optional customer geolocation with accuracy and capture time
//
// Value objects are immutable and are validated on construction; zero values fail
// Validate so that objects assembled with struct literals cannot leak into the domain.
package kernel
