// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render drives the paint-to-pixels cycle: it resolves
// stacking contexts into a paint-layer tree, paints dirty layers into
// their display lists, and composites the tree onto a pixel surface
// with damage-region tracking for incremental repaints.
package render
