// Package sync coordinates the local SQLite store and the remote
// Postgres store so the goal list stays usable offline.
//
// The model is local-first:
//
//   - Sync-down runs once at session start, before any local read. The
//     remote partition for the active owner replaces the local one in a
//     single transaction. If the remote is unreachable the local data is
//     left untouched and the session proceeds with it; stale-but-available
//     beats blocking.
//
//   - Sync-up runs after every local create or update, pushing the
//     post-mutation record to the remote as an upsert. It is best-effort:
//     a failed push is logged and swallowed, the local write stays
//     committed, and the stores may diverge until the next successful
//     sync-down. Deletes follow the same policy.
//
// There is no conflict resolution beyond last-writer-wins, no retry, and
// no background sync; every transition is triggered by an explicit user
// action. A device that wrote while offline is overwritten by whatever
// the remote holds at its next sync-down.
package sync
