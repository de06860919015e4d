// Package courier holds the Courier aggregate: who a courier is, where they
// were last seen and whether they accept new orders.
//
// Couriers are created by their first location ping and updated by every later
// one. They are never deleted; a courier that stops working is marked
// unavailable and drops out of proximity searches.
package courier
