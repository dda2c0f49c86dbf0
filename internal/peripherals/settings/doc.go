// Package settings patches JSON-with-comments settings documents of host
// applications so they use the installed font.
//
// Documents are decoded into an opaque map and re-encoded after editing.
// Comments and key order are not preserved, so every patched file is first
// copied into the backup directory under a timestamped name.
package settings
