// Package services provides domain services that produce data the Order
// aggregate incorporates but does not compute itself.
//
// The package includes:
//   - DeliveryAssigner: builds the DeliveryAssignment for an approved order
//   - OtpGenerator: issues the proof-of-delivery code at dispatch
//
// Neither service writes the order; callers apply the result through the
// aggregate inside a unit of work.
package services
