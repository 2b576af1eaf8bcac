// Package order provides the Order aggregate root of the fulfillment core and
// the status state machine that governs it.
//
// The package includes:
//   - Order: identity, items, amounts, payment and delivery sub-state
//   - Status: the closed lifecycle enum with its transition methods
//   - Item, Amounts, PaymentDetails, DeliveryAssignment: value objects owned by Order
//
// Key business rules:
//   - Orders follow Pending -> Approved -> OutForDelivery -> Delivered
//   - Pending and Approved orders can be cancelled; Delivered and Cancelled are terminal
//   - Online orders can only be approved after a verified payment
//   - A delivery code is issued once at dispatch and must be presented to deliver
//   - Amounts are computed server-side: 18% tax, flat fee up to a subtotal of 500
package order
