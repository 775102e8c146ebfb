// Package syncer brings a single local directory in sync with its remote
// git repository.
//
// A Job names a target path and, optionally, the remote it can be cloned
// from. The Executor decides once per job which Operation applies
//
//   - target is a directory: `git pull --prune` inside it
//   - target is missing and a remote is known: `git clone <remote> <target>`
//     from the closest existing ancestor directory
//   - anything else is skipped and reported as a failure
//
// and classifies the result into an Outcome. Every outcome other than
// Synced counts as a failed job.
//
// # Logging:
//
// Executor takes slog reference for logging. Successful jobs are only logged
// when the executor is verbose, failures are always logged at error level
// with the captured output of git. Commands are logged at 'trace' (-8) level.
package syncer
