package applier

import (
	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/engineerr"
	"wiretuner/engine/internal/events"
)

func applySelectObjects(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.SelectObjects
	if doc.IndexOfArtboard(p.ArtboardID) < 0 {
		return doc, engineerr.AtSequence("applier.SelectObjects", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	return doc.WithArtboard(p.ArtboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithSelection(a.Selection.Apply(p.Mode, p.ObjectIDs))
	}), nil
}

func applyClearSelection(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.ClearSelection
	if doc.IndexOfArtboard(p.ArtboardID) < 0 {
		return doc, engineerr.AtSequence("applier.ClearSelection", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	return doc.WithArtboard(p.ArtboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithSelection(docmodel.NewSelection())
	}), nil
}

func applySelectAnchors(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.SelectAnchors
	ai, _, _, ok := doc.FindObject(p.ObjectID)
	if !ok {
		return doc, engineerr.AtSequence("applier.SelectAnchors", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	artboardID := doc.Artboards[ai].ID
	return doc.WithArtboard(artboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithSelection(a.Selection.WithAnchorSelection(p.ObjectID, p.AnchorIndices))
	}), nil
}

func applyCreateLayer(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.CreateLayer
	if doc.IndexOfArtboard(p.ArtboardID) < 0 {
		return doc, engineerr.AtSequence("applier.CreateLayer", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	return doc.WithArtboard(p.ArtboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithAppendedLayer(docmodel.NewLayer(p.LayerID, p.Name))
	}), nil
}

func applyReorderLayers(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.ReorderLayers
	if doc.IndexOfArtboard(p.ArtboardID) < 0 {
		return doc, engineerr.AtSequence("applier.ReorderLayers", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	return doc.WithArtboard(p.ArtboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithReorderedLayers(p.Order)
	}), nil
}

func applySetLayerProperties(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.SetLayerProperties
	artboardIdx := doc.ArtboardOfLayer(p.LayerID)
	if artboardIdx < 0 {
		return doc, engineerr.AtSequence("applier.SetLayerProperties", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	artboardID := doc.Artboards[artboardIdx].ID
	return doc.WithArtboard(artboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithLayer(p.LayerID, func(l docmodel.Layer) docmodel.Layer {
			if p.Name != nil {
				l.Name = *p.Name
			}
			if p.Visible != nil {
				l.Visible = *p.Visible
			}
			if p.Locked != nil {
				l.Locked = *p.Locked
			}
			return l
		})
	}), nil
}

func applyCreateArtboard(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.CreateArtboard
	if doc.IndexOfArtboard(p.ArtboardID) >= 0 {
		return doc, engineerr.AtSequence("applier.CreateArtboard", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	return doc.WithAppendedArtboard(docmodel.NewArtboard(p.ArtboardID, p.Name, p.Bounds)), nil
}

func applyUpdateArtboardBounds(doc docmodel.Document, e events.Event) (docmodel.Document, error) {
	p := e.UpdateArtboardBounds
	if doc.IndexOfArtboard(p.ArtboardID) < 0 {
		return doc, engineerr.AtSequence("applier.UpdateArtboardBounds", engineerr.InvariantViolated, uint64(e.EventSequence))
	}
	return doc.WithArtboard(p.ArtboardID, func(a docmodel.Artboard) docmodel.Artboard {
		return a.WithBounds(p.Bounds)
	}), nil
}
