package applier

import (
	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/engineerr"
	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/geometry"
)

func applyCreatePath(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.CreatePath
	artboardIdx := doc.ArtboardOfLayer(p.LayerID)
	if artboardIdx < 0 {
		return doc, engineerr.AtSequence("applier.CreatePath", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	path := geometry.Path{
		Anchors: []geometry.AnchorPoint{{Position: p.Start, Type: geometry.AnchorCorner}},
	}
	obj := docmodel.NewPathObject(p.PathID, path)
	return doc.WithArtboard(doc.Artboards[artboardIdx].ID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithLayer(p.LayerID, func(l docmodel.Layer) docmodel.Layer {
			return l.WithAppendedObject(obj)
		})
	}), nil
}

func applyAddAnchor(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.AddAnchor
	ai, li, oi, ok := doc.FindObject(p.PathID)
	if !ok {
		return doc, engineerr.AtSequence("applier.AddAnchor", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	obj := doc.Artboards[ai].Layers[li].Objects[oi]
	if obj.Kind != docmodel.ObjectKindPath || obj.Path == nil {
		return doc, engineerr.AtSequence("applier.AddAnchor", engineerr.InvariantViolated, uint64(e.EventSequence))
	}

	anchor := geometry.AnchorPoint{
		Position:  p.Position,
		Type:      p.AnchorType,
		HandleIn:  p.HandleIn,
		HandleOut: p.HandleOut,
	}
	if !anchor.ValidateConstraint() {
		return doc, engineerr.AtSequence("applier.AddAnchor", engineerr.InvariantViolated, uint64(e.EventSequence))
	}

	segKind := geometry.SegmentLine
	if p.AnchorType == geometry.AnchorBezier || p.HandleIn != nil {
		segKind = geometry.SegmentBezier
	}

	artboardID := doc.Artboards[ai].ID
	layerID := doc.Artboards[ai].Layers[li].ID
	return doc.WithArtboard(artboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithLayer(layerID, func(l docmodel.Layer) docmodel.Layer {
			return l.WithObject(p.PathID, func(o docmodel.VectorObject) docmodel.VectorObject {
				path := o.Path.Clone()
				newIndex := len(path.Anchors)
				path.Anchors = append(path.Anchors, anchor)
				if newIndex > 0 {
					path.Segments = append(path.Segments, geometry.Segment{
						StartAnchorIndex: newIndex - 1,
						EndAnchorIndex:   newIndex,
						Kind:             segKind,
					})
				}
				return o.WithPath(path)
			})
		})
	}), nil
}

func applyMoveAnchor(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.MoveAnchor
	ai, li, oi, ok := doc.FindObject(p.PathID)
	if !ok {
		return doc, engineerr.AtSequence("applier.MoveAnchor", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	obj := doc.Artboards[ai].Layers[li].Objects[oi]
	if obj.Kind != docmodel.ObjectKindPath || obj.Path == nil || p.AnchorIndex < 0 || p.AnchorIndex >= len(obj.Path.Anchors) {
		return doc, engineerr.AtSequence("applier.MoveAnchor", engineerr.InvariantViolated, uint64(e.EventSequence))
	}

	artboardID := doc.Artboards[ai].ID
	layerID := doc.Artboards[ai].Layers[li].ID
	return doc.WithArtboard(artboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithLayer(layerID, func(l docmodel.Layer) docmodel.Layer {
			return l.WithObject(p.PathID, func(o docmodel.VectorObject) docmodel.VectorObject {
				path := o.Path.Clone()
				anchor := path.Anchors[p.AnchorIndex]
				delta := p.Position.Sub(anchor.Position)
				anchor.Position = p.Position
				if anchor.HandleIn != nil {
					moved := anchor.HandleIn.Add(delta)
					anchor.HandleIn = &moved
				}
				if anchor.HandleOut != nil {
					moved := anchor.HandleOut.Add(delta)
					anchor.HandleOut = &moved
				}
				path.Anchors[p.AnchorIndex] = anchor
				return o.WithPath(path)
			})
		})
	}), nil
}

func applyDeleteAnchor(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.DeleteAnchor
	ai, li, oi, ok := doc.FindObject(p.PathID)
	if !ok {
		return doc, engineerr.AtSequence("applier.DeleteAnchor", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	obj := doc.Artboards[ai].Layers[li].Objects[oi]
	if obj.Kind != docmodel.ObjectKindPath || obj.Path == nil || p.AnchorIndex < 0 || p.AnchorIndex >= len(obj.Path.Anchors) {
		return doc, engineerr.AtSequence("applier.DeleteAnchor", engineerr.InvariantViolated, uint64(e.EventSequence))
	}

	artboardID := doc.Artboards[ai].ID
	layerID := doc.Artboards[ai].Layers[li].ID
	return doc.WithArtboard(artboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithLayer(layerID, func(l docmodel.Layer) docmodel.Layer {
			return l.WithObject(p.PathID, func(o docmodel.VectorObject) docmodel.VectorObject {
				path := o.Path.Clone()
				path.Anchors = append(path.Anchors[:p.AnchorIndex], path.Anchors[p.AnchorIndex+1:]...)

				var kept []geometry.Segment
				for _, seg := range path.Segments {
					if seg.StartAnchorIndex == p.AnchorIndex || seg.EndAnchorIndex == p.AnchorIndex {
						continue
					}
					if seg.StartAnchorIndex > p.AnchorIndex {
						seg.StartAnchorIndex--
					}
					if seg.EndAnchorIndex > p.AnchorIndex {
						seg.EndAnchorIndex--
					}
					kept = append(kept, seg)
				}
				path.Segments = kept
				return o.WithPath(path)
			})
		})
	}), nil
}

func applyUpdateHandle(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.UpdateHandle
	ai, li, oi, ok := doc.FindObject(p.PathID)
	if !ok {
		return doc, engineerr.AtSequence("applier.UpdateHandle", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	obj := doc.Artboards[ai].Layers[li].Objects[oi]
	if obj.Kind != docmodel.ObjectKindPath || obj.Path == nil || p.AnchorIndex < 0 || p.AnchorIndex >= len(obj.Path.Anchors) {
		return doc, engineerr.AtSequence("applier.UpdateHandle", engineerr.InvariantViolated, uint64(e.EventSequence))
	}

	candidate := obj.Path.Anchors[p.AnchorIndex]
	if p.Which == events.HandleIn {
		candidate.HandleIn = p.Handle
	} else {
		candidate.HandleOut = p.Handle
	}
	if !candidate.ValidateConstraint() {
		return doc, engineerr.AtSequence("applier.UpdateHandle", engineerr.InvariantViolated, uint64(e.EventSequence))
	}

	artboardID := doc.Artboards[ai].ID
	layerID := doc.Artboards[ai].Layers[li].ID
	return doc.WithArtboard(artboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithLayer(layerID, func(l docmodel.Layer) docmodel.Layer {
			return l.WithObject(p.PathID, func(o docmodel.VectorObject) docmodel.VectorObject {
				path := o.Path.Clone()
				path.Anchors[p.AnchorIndex] = candidate
				return o.WithPath(path)
			})
		})
	}), nil
}

func applyFinishPath(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.FinishPath
	ai, li, oi, ok := doc.FindObject(p.PathID)
	if !ok {
		return doc, engineerr.AtSequence("applier.FinishPath", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	obj := doc.Artboards[ai].Layers[li].Objects[oi]
	if obj.Kind != docmodel.ObjectKindPath || obj.Path == nil {
		return doc, engineerr.AtSequence("applier.FinishPath", engineerr.InvariantViolated, uint64(e.EventSequence))
	}

	artboardID := doc.Artboards[ai].ID
	layerID := doc.Artboards[ai].Layers[li].ID
	return doc.WithArtboard(artboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithLayer(layerID, func(l docmodel.Layer) docmodel.Layer {
			return l.WithObject(p.PathID, func(o docmodel.VectorObject) docmodel.VectorObject {
				path := o.Path.Clone()
				path.Closed = p.Closed
				if path.Closed && len(path.Anchors) > 1 {
					last := len(path.Anchors) - 1
					hasClosing := false
					for _, seg := range path.Segments {
						if seg.StartAnchorIndex == last && seg.EndAnchorIndex == 0 {
							hasClosing = true
							break
						}
					}
					if !hasClosing {
						path.Segments = append(path.Segments, geometry.Segment{
							StartAnchorIndex: last,
							EndAnchorIndex:   0,
							Kind:             geometry.SegmentLine,
						})
					}
				}
				return o.WithPath(path)
			})
		})
	}), nil
}
