// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/layer"
)

// LayerExport is a serializable snapshot of one layer, for debugging and
// inspection tools.
type LayerExport struct {
	ID           uint64          `json:"id"`
	Bounds       paint.Rect      `json:"bounds"`
	Transform    paint.Transform `json:"transform"`
	Opacity      float64         `json:"opacity"`
	BlendMode    string          `json:"blendMode"`
	IsGPU        bool            `json:"isGpu"`
	IsDirty      bool            `json:"isDirty"`
	CommandCount int             `json:"commandCount"`
	Children     []*LayerExport  `json:"children,omitempty"`
}

// ExportLayerTree snapshots the current layer tree. It fails before the
// first Paint call.
func (c *Coordinator) ExportLayerTree() (*LayerExport, error) {
	if c.tree == nil {
		return nil, fmt.Errorf("render: no layer tree to export, call Paint first")
	}
	return exportLayer(c.tree.Root()), nil
}

// ExportLayerTreeJSON returns the snapshot as indented JSON.
func (c *Coordinator) ExportLayerTreeJSON() ([]byte, error) {
	export, err := c.ExportLayerTree()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(export, "", "  ")
}

func exportLayer(l *layer.Layer) *LayerExport {
	e := &LayerExport{
		ID:           uint64(l.ID()),
		Bounds:       l.Bounds(),
		Transform:    l.Transform(),
		Opacity:      l.Opacity(),
		BlendMode:    l.CompositingMode().String(),
		IsGPU:        l.IsGPUAccelerated(),
		IsDirty:      l.IsDirty(),
		CommandCount: l.CommandCount(),
	}
	for _, child := range l.Children() {
		e.Children = append(e.Children, exportLayer(child))
	}
	return e
}
