package events

// Event is the closed discriminated union of domain events. Exactly one
// payload pointer field is non-nil, selected by Envelope.EventType — the
// same "discriminator plus exclusive pointer field" shape the teacher uses
// for its command union (Move *MoveCommand / Action *ActionCommand in
// internal/sim/command.go), chosen over an interface so JSON
// marshal/unmarshal stays a plain struct tag walk and the applier's
// registry dispatch (internal/applier) can be exhaustiveness-checked at
// init time.
type Event struct {
	Envelope

	CreatePath            *CreatePathPayload            `json:"createPath,omitempty"`
	AddAnchor             *AddAnchorPayload             `json:"addAnchor,omitempty"`
	MoveAnchor            *MoveAnchorPayload            `json:"moveAnchor,omitempty"`
	DeleteAnchor          *DeleteAnchorPayload          `json:"deleteAnchor,omitempty"`
	UpdateHandle          *UpdateHandlePayload          `json:"updateHandle,omitempty"`
	FinishPath            *FinishPathPayload            `json:"finishPath,omitempty"`
	CreateShape           *CreateShapePayload           `json:"createShape,omitempty"`
	UpdateShapeParameters *UpdateShapeParametersPayload `json:"updateShapeParameters,omitempty"`
	DeleteObject          *DeleteObjectPayload          `json:"deleteObject,omitempty"`
	MoveObject            *MoveObjectPayload            `json:"moveObject,omitempty"`
	RotateObject          *RotateObjectPayload          `json:"rotateObject,omitempty"`
	ScaleObject           *ScaleObjectPayload           `json:"scaleObject,omitempty"`
	SelectObjects         *SelectObjectsPayload         `json:"selectObjects,omitempty"`
	ClearSelection        *ClearSelectionPayload        `json:"clearSelection,omitempty"`
	SelectAnchors         *SelectAnchorsPayload         `json:"selectAnchors,omitempty"`
	CreateLayer           *CreateLayerPayload           `json:"createLayer,omitempty"`
	ReorderLayers         *ReorderLayersPayload         `json:"reorderLayers,omitempty"`
	SetLayerProperties    *SetLayerPropertiesPayload    `json:"setLayerProperties,omitempty"`
	CreateArtboard        *CreateArtboardPayload        `json:"createArtboard,omitempty"`
	UpdateArtboardBounds  *UpdateArtboardBoundsPayload  `json:"updateArtboardBounds,omitempty"`
	StartGroup            *StartGroupPayload            `json:"startGroup,omitempty"`
	EndGroup              *EndGroupPayload              `json:"endGroup,omitempty"`
}

// IsContinuous reports whether the event kind is a high-frequency,
// sampler-eligible stream (drag/pan/zoom-style edits) as opposed to a
// discrete click/keypress-style event (spec.md §4.3).
func (e Event) IsContinuous() bool {
	switch e.EventType {
	case TypeMoveAnchor, TypeMoveObject, TypeRotateObject, TypeScaleObject, TypeUpdateHandle:
		return true
	default:
		return false
	}
}

// IsGroupBoundary reports whether the event opens or closes an undo group.
func (e Event) IsGroupBoundary() bool {
	return e.EventType == TypeStartGroup || e.EventType == TypeEndGroup
}

// payloadFields returns each non-nil payload pointer field set on e, used by
// Validate to assert the "exactly one" invariant.
func (e Event) payloadFields() []Type {
	var present []Type
	add := func(t Type, nonNil bool) {
		if nonNil {
			present = append(present, t)
		}
	}
	add(TypeCreatePath, e.CreatePath != nil)
	add(TypeAddAnchor, e.AddAnchor != nil)
	add(TypeMoveAnchor, e.MoveAnchor != nil)
	add(TypeDeleteAnchor, e.DeleteAnchor != nil)
	add(TypeUpdateHandle, e.UpdateHandle != nil)
	add(TypeFinishPath, e.FinishPath != nil)
	add(TypeCreateShape, e.CreateShape != nil)
	add(TypeUpdateShapeParameters, e.UpdateShapeParameters != nil)
	add(TypeDeleteObject, e.DeleteObject != nil)
	add(TypeMoveObject, e.MoveObject != nil)
	add(TypeRotateObject, e.RotateObject != nil)
	add(TypeScaleObject, e.ScaleObject != nil)
	add(TypeSelectObjects, e.SelectObjects != nil)
	add(TypeClearSelection, e.ClearSelection != nil)
	add(TypeSelectAnchors, e.SelectAnchors != nil)
	add(TypeCreateLayer, e.CreateLayer != nil)
	add(TypeReorderLayers, e.ReorderLayers != nil)
	add(TypeSetLayerProperties, e.SetLayerProperties != nil)
	add(TypeCreateArtboard, e.CreateArtboard != nil)
	add(TypeUpdateArtboardBounds, e.UpdateArtboardBounds != nil)
	add(TypeStartGroup, e.StartGroup != nil)
	add(TypeEndGroup, e.EndGroup != nil)
	return present
}

// Validate checks that exactly one payload field is set and that it matches
// EventType.
func (e Event) Validate() bool {
	fields := e.payloadFields()
	if len(fields) != 1 {
		return false
	}
	return fields[0] == e.EventType
}

// AllTypes enumerates every event type in the closed union, used by the
// applier's registry self-test to assert handler coverage is exhaustive.
func AllTypes() []Type {
	return []Type{
		TypeCreatePath, TypeAddAnchor, TypeMoveAnchor, TypeDeleteAnchor,
		TypeUpdateHandle, TypeFinishPath, TypeCreateShape, TypeUpdateShapeParameters,
		TypeDeleteObject, TypeMoveObject, TypeRotateObject, TypeScaleObject,
		TypeSelectObjects, TypeClearSelection, TypeSelectAnchors, TypeCreateLayer,
		TypeReorderLayers, TypeSetLayerProperties, TypeCreateArtboard,
		TypeUpdateArtboardBounds, TypeStartGroup, TypeEndGroup,
	}
}
