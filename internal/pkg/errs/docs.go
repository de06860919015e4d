// Package errs provides the typed errors shared by the dispatch service.
//
// Every failure surfaced by the core maps to exactly one kind:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed
//     or missing client input (see IsValidation)
//   - ObjectNotFoundError: a referenced courier or order does not exist
//   - ObjectConflictError: the entity's state forbids the change, such as a lost claim race
//   - StoreUnavailableError: the backing store timed out or is unreachable
//
// Each kind has a sentinel for errors.Is, a struct carrying the details, a
// constructor with and without cause, and an Unwrap method returning the sentinel.
package errs
