// Package natsconf provides hot configuration reload for a NATS-style message
// broker: parse the broker's configuration language, validate the result,
// compute what changed, and drive the change through a cancellable apply
// pipeline with full version history.
//
// # Architecture
//
// The pipeline flows through small, independently testable packages:
//
//	┌──────────────┐   ┌──────────────┐   ┌──────────────┐
//	│  confparse   │ → │   validate   │ → │     diff     │
//	│ (lenient     │   │ (errors vs   │   │ (structural  │
//	│  file parse) │   │  warnings)   │   │  changes)    │
//	└──────────────┘   └──────────────┘   └──────┬───────┘
//	                                             ↓
//	┌──────────────┐   ┌──────────────┐   ┌──────────────┐
//	│   version    │ ← │  controller  │ → │  natsbroker  │
//	│ (numbered    │   │ (apply and   │   │ (reconfigure │
//	│  history)    │   │  rollback)   │   │  over NATS)  │
//	└──────────────┘   └──────────────┘   └──────────────┘
//
// # Packages
//
//   - types: the configuration tree, versions, diffs, validation results
//   - confparse: best-effort parser for the brace-delimited config language
//   - validate: two-tier validation (blocking errors, advisory warnings)
//   - diff: ordered dotted-path property changes between snapshots
//   - version: in-memory history plus a JetStream KV mirror
//   - controller: the validate/diff/notify/apply/commit workflow
//   - natsbroker: control-plane client speaking NATS request/reply
//   - health: component health tracking with an HTTP endpoint
//   - metric: prometheus instrumentation for the pipeline
//   - errors: classified error handling shared by all of the above
//
// # Change Workflow
//
// Every change runs the same pipeline: validate the proposed configuration
// against the current one, compute the structural diff, give registered
// subscribers a chance to veto, apply to the broker, commit a new numbered
// version, then notify observers. Any failure leaves the current
// configuration, the history, and the broker untouched.
//
// The cmd/natsconf daemon ties it together: it watches the configuration
// file, re-applies it on change, mirrors version history into JetStream KV,
// and serves /metrics and /healthz.
package natsconf
