// Package scanner checks rendered documents for markers of incomplete
// compilation (unresolved references and citations) and reports the pages
// on which each marker occurs.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/texsubmit/internal/fsutil"
	"git.home.luguber.info/inful/texsubmit/internal/logfields"
)

// DefaultArtifactGlob selects rendered outputs.
const DefaultArtifactGlob = "*.pdf"

// ErrExtractFailed indicates page text could not be extracted from an artifact.
var ErrExtractFailed = errors.New("page extraction failed")

// PageExtractor yields the text of each page of a rendered document, in order.
type PageExtractor interface {
	Pages(path string) ([]string, error)
}

// Scanner applies a MarkerSet to artifacts.
type Scanner struct {
	markers   MarkerSet
	extractor PageExtractor
}

// New creates a Scanner. An empty marker set falls back to DefaultMarkers.
func New(markers MarkerSet, extractor PageExtractor) *Scanner {
	if len(markers) == 0 {
		markers = DefaultMarkers()
	}
	return &Scanner{markers: markers, extractor: extractor}
}

// Markers returns the configured markers.
func (s *Scanner) Markers() MarkerSet { return s.markers }

// ScanPages returns, per marker, the 1-indexed pages containing it as a literal
// substring. Markers without matches are omitted, so an empty result means clean.
func (s *Scanner) ScanPages(pages []string) []Finding {
	var findings []Finding
	for _, m := range s.markers {
		var hits []int
		for i, page := range pages {
			if strings.Contains(page, m.Pattern) {
				hits = append(hits, i+1)
			}
		}
		if len(hits) > 0 {
			findings = append(findings, Finding{Marker: m, Pages: hits})
		}
	}
	return findings
}

// Scan extracts and checks every artifact. Extraction failures are collected
// and returned joined alongside the report of the artifacts that could be read.
func (s *Scanner) Scan(ctx context.Context, artifacts []Artifact) (*Report, error) {
	report := &Report{}
	var errs []error

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		label := a.Label
		if label == "" {
			label = a.Path
		}

		pages, err := s.extractor.Pages(a.Path)
		if err != nil {
			slog.Warn("Failed to extract page text", logfields.File(label), logfields.Error(err))
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrExtractFailed, label, err))
			continue
		}
		report.Scanned++

		findings := s.ScanPages(pages)
		if len(findings) == 0 {
			slog.Debug("Artifact clean", logfields.File(label), slog.Int("pages", len(pages)))
			continue
		}
		for _, fd := range findings {
			slog.Debug("Marker found", logfields.File(label), logfields.Marker(fd.Marker.Description), logfields.Count(len(fd.Pages)))
		}
		report.Files = append(report.Files, FileDefects{Path: label, Findings: findings})
	}

	return report, errors.Join(errs...)
}

// DiscoverArtifacts finds rendered outputs below root. Labels are the paths
// rebased onto labelRoot, so a scratch copy can report original locations.
func DiscoverArtifacts(ctx context.Context, root, labelRoot string) ([]Artifact, error) {
	paths, err := fsutil.Collect(fsutil.Find(ctx, root, DefaultArtifactGlob))
	if err != nil {
		return nil, fmt.Errorf("discover artifacts in %s: %w", root, err)
	}

	artifacts := make([]Artifact, 0, len(paths))
	for _, p := range paths {
		label := p
		if labelRoot != "" {
			if rel, err := filepath.Rel(root, p); err == nil {
				label = filepath.Join(labelRoot, rel)
			}
		}
		artifacts = append(artifacts, Artifact{Path: p, Label: label})
	}
	return artifacts, nil
}
