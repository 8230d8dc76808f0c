// Package git inspects the version-control state of a source tree so a
// submission can be traced back to a commit.
package git
