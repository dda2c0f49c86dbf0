// Package distro installs a WSL distribution and provisions its default user.
//
// The Resolver waits out or clears distributions stuck mid-transition. The
// Provisioner drives install, user creation, default-user binding, the
// first-boot payload, and verification against a Subsystem.
package distro
