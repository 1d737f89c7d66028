package treebuild

import (
	"context"
	"strings"

	"kachef/internal/kaapi"
	"kachef/internal/language"
	"kachef/internal/nodes"
)

// QuestionSource loads the questions of an exercise.
type QuestionSource interface {
	Questions(ctx context.Context, ex *nodes.Exercise) ([]nodes.Question, error)
}

// AssessmentFetcher is the GraphQL call behind AssessmentQuestions.
type AssessmentFetcher interface {
	AssessmentItems(ctx context.Context, urlTemplate, kalang, exerciseID string, itemIDs []string) ([]kaapi.AssessmentItem, error)
}

// AssessmentQuestions loads questions from the KA assessment endpoint.
type AssessmentQuestions struct {
	Fetcher     AssessmentFetcher
	URLTemplate string
	Language    string
}

// Questions fetches ex's items and drops those without item data.
func (a *AssessmentQuestions) Questions(ctx context.Context, ex *nodes.Exercise) ([]nodes.Question, error) {
	items, err := a.Fetcher.AssessmentItems(ctx, a.URLTemplate, language.ToKALang(a.Language), ex.ID, ex.AssessmentItemIDs)
	if err != nil {
		return nil, err
	}
	out := make([]nodes.Question, 0, len(items))
	for _, item := range items {
		data := strings.TrimSpace(item.ItemData)
		if data == "" || data == "null" {
			continue
		}
		out = append(out, nodes.Question{ID: item.ID, Data: item.ItemData, SourceURL: ex.SourceURL})
	}
	return out, nil
}
