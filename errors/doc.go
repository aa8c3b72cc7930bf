// Package errors provides standardized error handling patterns for natsconf
// components.
//
// # Overview
//
// The package implements an error classification system for the configuration
// apply pipeline: Transient (temporary, retryable), Invalid (bad input or
// configuration, non-retryable), Fatal (unrecoverable, stop processing), and
// NotFound (a lookup matched nothing).
//
// Classification lets callers make retry and abort decisions without matching
// on error strings, and integrates with Go's standard error handling patterns:
// errors.Is(), errors.As(), and wrapping chains all work through it.
//
// # Quick Start
//
// Use standard error variables for common conditions:
//
//	if cfg == nil {
//	    return errors.ErrNilConfig
//	}
//
// Wrap errors with component context, picking the class at the wrap site:
//
//	if err := conn.Request(subject, data, timeout); err != nil {
//	    return errors.WrapTransient(err, "Broker", "Reconfigure", "send request")
//	}
//
// Check classification when deciding how to react:
//
//	if err := store.Save(v); err != nil {
//	    if errors.IsTransient(err) {
//	        // safe to retry
//	    }
//	}
//
// # Error Wrapping Pattern
//
// All wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// The format keeps log lines parseable and greppable across the platform. The
// Wrap family of functions applies it while attaching the classification:
//
//	errors.WrapTransient(err, "Component", "Method", "action")
//	errors.WrapInvalid(err, "Component", "Method", "action")
//	errors.WrapFatal(err, "Component", "Method", "action")
//	errors.WrapNotFound(err, "Component", "Method", "action")
//
// The plain Wrap() adds the same context without forcing a class.
//
// # Standard Error Variables
//
// Pre-defined variables cover the common conditions, organized by category:
//
//   - Configuration: ErrNilConfig, ErrInvalidConfig, ErrFileNotFound, ErrValidationFailed
//   - Apply pipeline: ErrChangeCancelled, ErrApplyFailed, ErrApplyInFlight
//   - Version store: ErrVersionNotFound, ErrNilVersion, ErrStoreUnavailable
//   - Broker: ErrNoConnection, ErrBrokerTimeout, ErrBrokerRejected, ErrInfoUnavailable
//
// Prefer these over ad-hoc errors.New calls so that classification helpers
// recognize the condition even without a ClassifiedError in the chain.
//
// # Thread Safety
//
// All classification and wrapping operations are thread-safe. Error variables
// are immutable and safe for concurrent access.
package errors
