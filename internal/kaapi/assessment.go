package kaapi

import (
	"context"
	"fmt"
	"strings"
)

const assessmentItemsQuery = `query LearningEquality_assessmentItems($itemDescriptors: [String]!) {
    assessmentItems(reservedItemDescriptors: $itemDescriptors) {
        id
        itemData
    }
}`

// AssessmentItem is one exercise question as returned by the GraphQL endpoint.
type AssessmentItem struct {
	ID       string `json:"id"`
	ItemData string `json:"itemData"`
}

type assessmentResponse struct {
	Data struct {
		AssessmentItems []AssessmentItem `json:"assessmentItems"`
	} `json:"data"`
}

// AssessmentItems fetches the questions of an exercise. urlTemplate carries
// a {lang} placeholder that receives kalang.
func (c *Client) AssessmentItems(ctx context.Context, urlTemplate, kalang, exerciseID string, itemIDs []string) ([]AssessmentItem, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	descriptors := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		descriptors = append(descriptors, fmt.Sprintf("%s|%s", exerciseID, id))
	}
	payload := map[string]any{
		"query": assessmentItemsQuery,
		"variables": map[string]any{
			"itemDescriptors": descriptors,
		},
	}
	var resp assessmentResponse
	endpoint := strings.ReplaceAll(urlTemplate, "{lang}", kalang)
	if err := c.PostJSON(ctx, endpoint, payload, &resp); err != nil {
		return nil, err
	}
	return resp.Data.AssessmentItems, nil
}
