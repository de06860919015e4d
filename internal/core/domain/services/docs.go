// Package services contains the dispatch domain services.
//
//   - CourierRegistry upserts couriers from location pings and finds available
//     couriers near a point.
//   - DispatchMatcher produces the advisory candidate list for a new order and
//     the nearby pending orders a courier sees when polling.
//   - ClaimCoordinator accepts, rejects and advances orders. It holds no lock:
//     every status change is a compare-and-swap in the order store, so the
//     guarantees hold across any number of processes sharing that store.
package services
