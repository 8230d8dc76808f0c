// Package resolver stages library resources next to the documents that declare
// them. Documents are matched line by line; the first matching line triggers
// staging and an existing file of the same name is never overwritten.
package resolver

import (
	"context"
	"errors"
	"log/slog"

	"git.home.luguber.info/inful/texsubmit/internal/library"
	"git.home.luguber.info/inful/texsubmit/internal/logfields"
	"git.home.luguber.info/inful/texsubmit/internal/matcher"
)

// Result summarises one resolver pass.
type Result struct {
	Documents int
	Staged    []StagedResource // copied during this pass
	Present   []StagedResource // required but already present in the document's directory
	Errors    []error
}

// Err joins all collected failures, or returns nil.
func (r *Result) Err() error {
	return errors.Join(r.Errors...)
}

// Options configure a Resolver.
type Options struct {
	DocumentGlob    string
	PackageKeywords []string
	RootPattern     string
}

// Resolver runs the package and bibliography passes over a document tree.
type Resolver struct {
	documentGlob string
	packages     matcher.Factory
	roots        matcher.Factory
}

// New builds a Resolver, filling unset options with the LaTeX defaults.
func New(opts Options) (*Resolver, error) {
	if opts.DocumentGlob == "" {
		opts.DocumentGlob = DefaultDocumentGlob
	}
	if len(opts.PackageKeywords) == 0 {
		opts.PackageKeywords = matcher.DefaultPackageKeywords
	}

	pkgs, err := matcher.PackageFactory(opts.PackageKeywords)
	if err != nil {
		return nil, err
	}
	roots, err := matcher.RootFactory(opts.RootPattern)
	if err != nil {
		return nil, err
	}
	return &Resolver{documentGlob: opts.DocumentGlob, packages: pkgs, roots: roots}, nil
}

// StagePackages copies every library package declared by a document into that document's directory.
func (r *Resolver) StagePackages(ctx context.Context, root string, lib *library.Library) (*Result, error) {
	return r.Resolve(ctx, root, lib, r.packages)
}

// StageBibliographies copies every bibliography resource into the directory of each compilable root.
func (r *Resolver) StageBibliographies(ctx context.Context, root string, lib *library.Library) (*Result, error) {
	return r.Resolve(ctx, root, lib, r.roots)
}

// Resolve checks, for every resource in lib, every document below root against
// the matcher built for the resource's name and stages the resource on a match.
// Failures for individual (resource, document) pairs are collected; the returned
// error is the joined set of them. A nil Result means discovery itself failed.
func (r *Resolver) Resolve(ctx context.Context, root string, lib *library.Library, factory matcher.Factory) (*Result, error) {
	docs, readErrs, err := LoadDocuments(ctx, root, r.documentGlob)
	if err != nil {
		return nil, err
	}

	result := &Result{Documents: len(docs), Errors: readErrs}
	for _, res := range lib.Resources() {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err)
			return result, result.Err()
		}

		m := factory(res.Name)
		for _, doc := range docs {
			if matcher.FirstMatch(m, doc.Lines) < 0 {
				continue
			}

			target, copied, err := stage(res, doc.Dir())
			if err != nil {
				slog.Warn("Failed to stage resource",
					logfields.Resource(res.Name),
					logfields.Document(doc.Path),
					logfields.Error(err))
				result.Errors = append(result.Errors, err)
				continue
			}

			staged := StagedResource{Resource: res, Document: doc.Path, Target: target}
			if copied {
				slog.Debug("Staged resource",
					logfields.Resource(res.Name),
					slog.String("kind", string(res.Kind)),
					logfields.Path(target))
				result.Staged = append(result.Staged, staged)
			} else {
				result.Present = append(result.Present, staged)
			}
		}
	}
	return result, result.Err()
}

// Roots returns the compilable root documents below root, sorted by path,
// along with documents that could not be read.
func (r *Resolver) Roots(ctx context.Context, root string) ([]string, []error, error) {
	docs, readErrs, err := LoadDocuments(ctx, root, r.documentGlob)
	if err != nil {
		return nil, nil, err
	}
	m := r.roots("")
	var roots []string
	for _, doc := range docs {
		if matcher.FirstMatch(m, doc.Lines) >= 0 {
			roots = append(roots, doc.Path)
		}
	}
	return roots, readErrs, nil
}
