// Package submission runs the packaging pipeline: it copies a LaTeX source
// tree into a scratch workspace, strips auxiliary build files, stages the
// library packages and bibliographies the documents declare, optionally
// compiles the roots, checks rendered PDFs for broken references and
// citations, and writes the submission archive.
//
// The source tree and a pre-existing archive are never modified. The
// scratch workspace is removed on every exit path.
package submission
