// Package provisioning provides shared types and orchestration for a wsldev run.
//
// # Subpackages
//
//   - distro/: stuck-state resolution and distribution provisioning
//
// # Core Types
//
// Context carries configuration, state, timeouts, and the observer.
// Phase defines a provisioning step with Name() and Provision() methods.
// State accumulates results from each phase (subsystem status, distribution,
// peripheral results).
package provisioning
