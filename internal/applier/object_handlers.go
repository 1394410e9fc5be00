package applier

import (
	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/engineerr"
	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/ids"
)

func applyCreateShape(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.CreateShape
	artboardIdx := doc.ArtboardOfLayer(p.LayerID)
	if artboardIdx < 0 {
		return doc, engineerr.AtSequence("applier.CreateShape", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	obj := docmodel.NewShapeObject(p.ShapeID, p.Shape)
	artboardID := doc.Artboards[artboardIdx].ID
	return doc.WithArtboard(artboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithLayer(p.LayerID, func(l docmodel.Layer) docmodel.Layer {
			return l.WithAppendedObject(obj)
		})
	}), nil
}

func applyUpdateShapeParameters(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.UpdateShapeParameters
	ai, li, oi, ok := doc.FindObject(p.ShapeID)
	if !ok {
		return doc, engineerr.AtSequence("applier.UpdateShapeParameters", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	obj := doc.Artboards[ai].Layers[li].Objects[oi]
	if obj.Kind != docmodel.ObjectKindShape || obj.Shape == nil {
		return doc, engineerr.AtSequence("applier.UpdateShapeParameters", engineerr.InvariantViolated, uint64(e.EventSequence))
	}

	artboardID := doc.Artboards[ai].ID
	layerID := doc.Artboards[ai].Layers[li].ID
	return doc.WithArtboard(artboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithLayer(layerID, func(l docmodel.Layer) docmodel.Layer {
			return l.WithObject(p.ShapeID, func(o docmodel.VectorObject) docmodel.VectorObject {
				cloned := o.Clone()
				shape := cloned.Shape.Clone()
				shape.Parameters = p.Parameters
				cloned.Shape = &shape
				return cloned
			})
		})
	}), nil
}

func applyDeleteObject(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.DeleteObject
	ai, li, _, ok := doc.FindObject(p.ObjectID)
	if !ok {
		return doc, engineerr.AtSequence("applier.DeleteObject", engineerr.InvariantViolated, uint64(e.EventSequence))
	}

	artboardID := doc.Artboards[ai].ID
	layerID := doc.Artboards[ai].Layers[li].ID
	return doc.WithArtboard(artboardID, func(a docmodel.Artboard) docmodel.Artboard {
		next := a.WithLayer(layerID, func(l docmodel.Layer) docmodel.Layer {
			return l.WithoutObject(p.ObjectID)
		})
		sel := next.Selection.Clone()
		delete(sel.ObjectIDs, p.ObjectID)
		delete(sel.AnchorIndices, p.ObjectID)
		return next.WithSelection(sel)
	}), nil
}

func applyMoveObject(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.MoveObject
	return transformObject(doc, e.EventSequence, p.ObjectID, "applier.MoveObject", func(t docmodel.Transform) docmodel.Transform {
		t.Translate = t.Translate.Add(p.Delta)
		return t
	})
}

func applyRotateObject(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.RotateObject
	return transformObject(doc, e.EventSequence, p.ObjectID, "applier.RotateObject", func(t docmodel.Transform) docmodel.Transform {
		t.RotateDeg += p.DeltaDeg
		return t
	})
}

func applyScaleObject(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.ScaleObject
	return transformObject(doc, e.EventSequence, p.ObjectID, "applier.ScaleObject", func(t docmodel.Transform) docmodel.Transform {
		t.ScaleX *= p.ScaleX
		t.ScaleY *= p.ScaleY
		return t
	})
}

// transformObject locates objectID anywhere in the document and rewrites its
// Transform through fn, sharing this logic across move/rotate/scale since all
// three are accumulate-into-Transform operations differing only in which
// field they touch.
func transformObject(doc docmodel.Document, seq int64, objectID ids.ObjectID, op string, fn func(docmodel.Transform) docmodel.Transform) (docmodel.Document, error) {
	ai, li, _, ok := doc.FindObject(objectID)
	if !ok {
		return doc, engineerr.AtSequence(op, engineerr.InvariantViolated, uint64(seq))
	}
	artboardID := doc.Artboards[ai].ID
	layerID := doc.Artboards[ai].Layers[li].ID
	return doc.WithArtboard(artboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithLayer(layerID, func(l docmodel.Layer) docmodel.Layer {
			return l.WithObject(objectID, func(o docmodel.VectorObject) docmodel.VectorObject {
				return o.WithTransform(fn(o.Transform))
			})
		})
	}), nil
}
