// Package font downloads a Nerd Font archive and installs its font files for
// the current user.
//
// Archives are cached in the configured cache directory. On Windows every
// installed file is also registered under the per-user Fonts registry key so
// applications see it without a sign-out.
package font
