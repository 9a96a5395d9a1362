// Package walks is the domain core of the go-walks backend: users post and
// browse walk listings, gated by a stateless JWT authentication and
// authorization layer.
//
// Authentication:
//   - TokenService issues and validates signed session tokens. Parse only
//     checks signature and structure, so claims remain extractable from an
//     expired token; Validate is the single source of truth for whether a
//     token is usable and fails closed on any defect.
//   - Auther orchestrates login: credential lookup, bcrypt verification,
//     and the active-account check. Lookup misses and password mismatches
//     collapse into one outward error so callers cannot enumerate accounts.
//
// Authorization:
//   - Actor is the request-scoped identity resolved by the token gate in
//     middleware/tokengate. It is rebuilt from the store on every request;
//     issuance-time claims are never trusted for role or active status.
//   - WalkGuard implements the owner-or-admin ownership rule. AdminGuard
//     protects the last-active-admin invariant on role changes,
//     deactivations, and deletions, counting inside the mutating
//     transaction.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     registration flow. Sinks run best-effort (errors are logged) so you
//     can forward events to a database or queue without blocking
//     authentication.
package walks
