package types

// RecognitionContext is the externally produced structured description of
// an image: detected objects with confidences, a scene caption, and the
// dominant colors. The classifier consumes it as-is and makes no
// assumption about how it was produced.
type RecognitionContext struct {
	Objects     []RecognizedObject `json:"objects,omitempty"`
	Description string             `json:"description,omitempty"`
	Colors      []string           `json:"colors,omitempty"`
}

type RecognizedObject struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}
