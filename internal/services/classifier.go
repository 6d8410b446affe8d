package services

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/taxonomy"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// Candidate source confidences. Recognition objects carry their own
// confidence; scene hints are weak, direct name mappings strong.
const (
	confidenceScene       = 0.3
	confidenceDescription = 0.5
	confidenceNameKeyword = 0.7
	confidenceColor       = 0.8
	confidenceNameObject  = 0.9

	keywordFuzzyThreshold = 0.8
	similarityThreshold   = 0.6
)

// ScoredParent is one ranked placement suggestion.
type ScoredParent struct {
	Tag   *types.Tag `json:"tag"`
	Score float64    `json:"score"`
}

// SimilarTag is one fuzzy name match against the existing taxonomy.
type SimilarTag struct {
	Tag        *types.Tag `json:"tag"`
	Similarity float64    `json:"similarity"`
}

// ClassifierService suggests where a new tag belongs in the hierarchy.
// Heuristic only: it combines recognition context, name analysis,
// description keywords and color vocabulary into scored candidates; it
// never mutates the tree itself.
type ClassifierService interface {
	SuggestParents(ctx context.Context, tx *gorm.DB, name, description string, rc *types.RecognitionContext) ([]ScoredParent, error)
	BestParent(ctx context.Context, tx *gorm.DB, name, description string, rc *types.RecognitionContext) (*types.Tag, error)
	SimilarTags(ctx context.Context, tx *gorm.DB, name string, limit int) ([]SimilarTag, error)
}

type classifierService struct {
	db      *gorm.DB
	log     *logger.Logger
	tagRepo taxonomy.TagRepo
	kb      *KnowledgeBase
}

func NewClassifierService(db *gorm.DB, baseLog *logger.Logger, tagRepo taxonomy.TagRepo, kb *KnowledgeBase) ClassifierService {
	if kb == nil {
		kb = DefaultKnowledgeBase()
	}
	return &classifierService{
		db:      db,
		log:     baseLog.With("service", "ClassifierService"),
		tagRepo: tagRepo,
		kb:      kb,
	}
}

// candidate is a parent tag name plus the confidence of the source that
// proposed it; names are resolved against live tags during scoring.
type candidate struct {
	parentName string
	confidence float64
}

func (s *classifierService) SuggestParents(ctx context.Context, tx *gorm.DB, name, description string, rc *types.RecognitionContext) ([]ScoredParent, error) {
	name = strings.TrimSpace(name)
	if name == "" && rc == nil {
		return nil, apperrors.ValidationError("tag name or recognition context required")
	}

	var candidates []candidate
	candidates = append(candidates, s.fromRecognitionContext(rc)...)
	candidates = append(candidates, s.fromName(name)...)
	candidates = append(candidates, s.fromDescription(description)...)
	candidates = append(candidates, s.fromColors(name, description, rc)...)

	return s.scoreCandidates(ctx, tx, candidates)
}

// BestParent returns the top suggestion, or nil when no source fired.
func (s *classifierService) BestParent(ctx context.Context, tx *gorm.DB, name, description string, rc *types.RecognitionContext) (*types.Tag, error) {
	scored, err := s.SuggestParents(ctx, tx, name, description, rc)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, nil
	}
	return scored[0].Tag, nil
}

func (s *classifierService) fromRecognitionContext(rc *types.RecognitionContext) []candidate {
	if rc == nil {
		return nil
	}
	var out []candidate
	for _, obj := range rc.Objects {
		conf := obj.Confidence
		if conf <= 0 {
			conf = 0.5
		}
		for _, parent := range s.kb.ParentsForObject(obj.Label) {
			out = append(out, candidate{parentName: parent, confidence: conf})
		}
	}
	for _, parent := range s.kb.SceneParents(rc.Description) {
		out = append(out, candidate{parentName: parent, confidence: confidenceScene})
	}
	return out
}

func (s *classifierService) fromName(name string) []candidate {
	var out []candidate

	for _, parent := range s.kb.ParentsForObject(name) {
		out = append(out, candidate{parentName: parent, confidence: confidenceNameObject})
	}

	for category, keywords := range s.kb.CategoryKeywords {
		parent, ok := s.kb.CategoryParents[category]
		if !ok {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(strings.ToLower(name), kw) || similarityRatio(name, kw) > keywordFuzzyThreshold {
				out = append(out, candidate{parentName: parent, confidence: confidenceNameKeyword})
				break
			}
		}
	}
	return out
}

func (s *classifierService) fromDescription(description string) []candidate {
	if strings.TrimSpace(description) == "" {
		return nil
	}
	var out []candidate
	for _, parent := range s.kb.CategoryParentsIn(description) {
		out = append(out, candidate{parentName: parent, confidence: confidenceDescription})
	}
	return out
}

func (s *classifierService) fromColors(name, description string, rc *types.RecognitionContext) []candidate {
	colorSeen := rc != nil && len(rc.Colors) > 0
	if !colorSeen {
		colorSeen = s.kb.MentionsColor(name) || s.kb.MentionsColor(description)
	}
	if !colorSeen {
		return nil
	}
	return []candidate{{parentName: s.kb.ColorParent, confidence: confidenceColor}}
}

// scoreCandidates resolves candidate names against active tags and ranks
// them. score = confidence × usage boost (capped at 1.2) × quality factor.
// The same tag proposed by several sources keeps its best score rather
// than accumulating, so many weak hints cannot outvote one strong one.
func (s *classifierService) scoreCandidates(ctx context.Context, tx *gorm.DB, candidates []candidate) ([]ScoredParent, error) {
	best := map[string]ScoredParent{}
	resolved := map[string]*types.Tag{}

	for _, c := range candidates {
		tag, cached := resolved[c.parentName]
		if !cached {
			var err error
			tag, err = s.tagRepo.GetActiveByName(ctx, tx, c.parentName)
			if err != nil {
				return nil, apperrors.InternalError("resolve candidate parent", err)
			}
			resolved[c.parentName] = tag
		}
		if tag == nil {
			continue
		}

		score := c.confidence
		if tag.UsageCount > 0 {
			boost := 1.0 + float64(tag.UsageCount)/100.0
			if boost > 1.2 {
				boost = 1.2
			}
			score *= boost
		}
		score *= tag.QualityScore / 10.0

		key := tag.ID.String()
		if prev, ok := best[key]; !ok || score > prev.Score {
			best[key] = ScoredParent{Tag: tag, Score: score}
		}
	}

	out := make([]ScoredParent, 0, len(best))
	for _, sp := range best {
		out = append(out, sp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Tag.Name < out[j].Tag.Name
	})
	return out, nil
}

// SimilarTags finds existing tags whose names fuzzily match the given
// name, for duplicate detection before creating a new tag.
func (s *classifierService) SimilarTags(ctx context.Context, tx *gorm.DB, name string, limit int) ([]SimilarTag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ValidationError("tag name required")
	}
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.tagRepo.Search(ctx, tx, name, "", "", limit*2)
	if err != nil {
		return nil, apperrors.InternalError("search similar tags", err)
	}

	out := make([]SimilarTag, 0, len(rows))
	for _, tag := range rows {
		sim := similarityRatio(name, tag.Name)
		if alt := similarityRatio(name, tag.NameAlt); alt > sim {
			sim = alt
		}
		for _, alias := range tag.AliasList() {
			if a := similarityRatio(name, alias); a > sim {
				sim = a
			}
		}
		if sim > similarityThreshold {
			out = append(out, SimilarTag{Tag: tag, Similarity: sim})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Tag.Name < out[j].Tag.Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
