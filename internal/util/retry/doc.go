// Package retry provides the bounded retry and poll loops used around
// subsystem commands.
//
// [Attempts] retries an operation a fixed number of times and stops early on
// errors marked with [Fatal]. [Poll] re-evaluates a condition at a fixed
// interval until it holds or a ceiling is reached. Both sleep through a
// [Sleeper] so tests can account for elapsed time without waiting.
package retry
