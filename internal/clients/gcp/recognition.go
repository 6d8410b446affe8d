package gcp

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/ctxutil"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// Recognizer annotates an image and distills the result into the
// RecognitionContext shape the auto-classifier consumes: detected objects with
// confidence, dominant color names and a short description.
type Recognizer interface {
	RecognizeImage(ctx context.Context, img []byte) (*types.RecognitionContext, error)
	Close() error
}

type recognizer struct {
	log    *logger.Logger
	client *vision.ImageAnnotatorClient

	maxLabels     int
	minConfidence float64
}

func NewRecognizer(log *logger.Logger) (Recognizer, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("client", "gcp.Recognizer")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	vClient, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &recognizer{
		log:           slog,
		client:        vClient,
		maxLabels:     10,
		minConfidence: 0.5,
	}, nil
}

func (r *recognizer) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *recognizer) RecognizeImage(ctx context.Context, img []byte) (*types.RecognitionContext, error) {
	if len(img) == 0 {
		return &types.RecognitionContext{}, nil
	}

	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: int32(r.maxLabels)},
			{Type: visionpb.Feature_OBJECT_LOCALIZATION, MaxResults: int32(r.maxLabels)},
			{Type: visionpb.Feature_IMAGE_PROPERTIES},
		},
	}

	br := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{req}}
	resp, err := r.client.BatchAnnotateImages(ctx, br)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &types.RecognitionContext{}, nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	out := &types.RecognitionContext{}
	seen := map[string]int{} // label -> index into out.Objects

	addObject := func(label string, score float64) {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" || score < r.minConfidence {
			return
		}
		if i, ok := seen[label]; ok {
			if score > out.Objects[i].Confidence {
				out.Objects[i].Confidence = score
			}
			return
		}
		seen[label] = len(out.Objects)
		out.Objects = append(out.Objects, types.RecognizedObject{Label: label, Confidence: score})
	}

	for _, obj := range r0.LocalizedObjectAnnotations {
		if obj == nil {
			continue
		}
		addObject(obj.Name, float64(obj.Score))
	}
	for _, lbl := range r0.LabelAnnotations {
		if lbl == nil {
			continue
		}
		addObject(lbl.Description, float64(lbl.Score))
	}

	sort.SliceStable(out.Objects, func(i, j int) bool {
		return out.Objects[i].Confidence > out.Objects[j].Confidence
	})

	if props := r0.ImagePropertiesAnnotation; props != nil && props.DominantColors != nil {
		out.Colors = dominantColorNames(props.DominantColors.Colors, 3)
	}

	if len(out.Objects) > 0 {
		names := make([]string, 0, minInt(3, len(out.Objects)))
		for _, o := range out.Objects[:minInt(3, len(out.Objects))] {
			names = append(names, o.Label)
		}
		out.Description = strings.Join(names, ", ")
	}

	return out, nil
}

// basicPalette maps the color vocabulary the classifier knows to reference RGB
// points. Dominant colors snap to the nearest entry.
var basicPalette = []struct {
	name    string
	r, g, b float64
}{
	{"black", 0, 0, 0},
	{"white", 255, 255, 255},
	{"gray", 128, 128, 128},
	{"red", 220, 40, 40},
	{"orange", 250, 150, 40},
	{"yellow", 250, 220, 50},
	{"green", 60, 170, 70},
	{"blue", 50, 100, 220},
	{"purple", 140, 70, 180},
	{"pink", 240, 150, 190},
	{"brown", 130, 85, 50},
}

func nearestColorName(red, green, blue float64) string {
	best := ""
	bestDist := math.MaxFloat64
	for _, p := range basicPalette {
		d := (p.r-red)*(p.r-red) + (p.g-green)*(p.g-green) + (p.b-blue)*(p.b-blue)
		if d < bestDist {
			bestDist = d
			best = p.name
		}
	}
	return best
}

func dominantColorNames(colors []*visionpb.ColorInfo, limit int) []string {
	sorted := make([]*visionpb.ColorInfo, 0, len(colors))
	for _, c := range colors {
		if c != nil && c.Color != nil {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PixelFraction > sorted[j].PixelFraction
	})

	out := make([]string, 0, limit)
	seen := map[string]bool{}
	for _, c := range sorted {
		name := nearestColorName(float64(c.Color.Red), float64(c.Color.Green), float64(c.Color.Blue))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
