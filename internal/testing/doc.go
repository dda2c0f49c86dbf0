// Package testing provides test utilities, builders, and fixtures for unit tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - ConfigBuilder: Fluent builder for creating test configurations
//   - DistroFixture: Pre-configured mock subsystem for common scenarios
//   - MockSubsystem: Shared testify mock of the WSL subsystem
//   - RecordingObserver and FakeSleeper: deterministic observation of a run
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithDistro("Ubuntu").
//	    WithUsername("alice").
//	    Build()
//
//	fixture := testing.NewDistroFixture("Ubuntu", "alice")
//	sub := fixture.FreshInstall()
package testing
