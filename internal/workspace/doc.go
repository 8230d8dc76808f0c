// Package workspace manages the scratch directory a packaging run mutates.
//
// Every run gets a fresh, uniquely named directory (texsubmit-<uuid>) below the
// system temp dir. The source tree is copied into it, resources are staged and
// auxiliary files removed there, and it is deleted by Cleanup on every exit
// path. Keep mode leaves the directory in place for inspection after a run.
package workspace
