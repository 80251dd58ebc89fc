// Package movies holds the client-side state of the movie board and orchestrates every write to it.
//
// A [Controller] owns the ordered collection for one view together with its transient state: comment
// drafts, the expanded movie and the single comment editor. Views read snapshots and call Controller
// methods; they never mutate movies themselves.
//
// # Reconciliation
//
// Local state follows the backend, never the other way around:
//   - Load replaces the whole collection. Results are discarded when the Controller was closed or a newer
//     load started while the fetch was outstanding.
//   - Adding is optimistic and two-phase: [Controller.BeginAdd] prepends a temporary record tagged with a
//     correlation id, [Controller.FinishAdd] commits the backend record in its place or aborts and resyncs.
//   - Votes and comments wait for the backend and replace the single record it returns.
//   - Deletes are confirmed first and trusted only on a 2xx status; anything else reloads.
//
// Each action is keyed ("add", "vote:<id>", ...) and a second submission of the same key while the first
// is outstanding fails with [shared.ErrInFlight] without issuing a request.
//
// # Comment editor
//
// At most one editor is open across the whole list:
//
//	Idle -> EditingExisting(comment)   StartEdit, own comment only
//	Idle -> EditingNew(movie)          StartNew, only without an own comment
//	Editing* -> Idle                   Cancel, a successful save, or collapsing the movie
package movies
