package kaapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

var (
	topicAttributes = []string{
		"childData", "deleted", "doNotPublish", "hide", "id", "kind", "slug",
		"translatedTitle", "translatedDescription", "curriculumKey",
	}
	exerciseAttributes = []string{
		"allAssessmentItems", "displayName", "fileName", "id", "kind", "name",
		"prerequisites", "slug", "usesAssessmentItems", "relatedContent",
		"translatedTitle", "translatedDescription", "suggestedCompletionCriteria",
		"kaUrl", "imageUrl",
	}
	videoAttributes = []string{
		"id", "kind", "licenseName", "slug", "youtubeId", "translatedYoutubeLang",
		"translatedYoutubeId", "translatedTitle", "translatedDescription",
		"translatedDescriptionHtml", "downloadUrls", "imageUrl",
	}
)

// projection renders the field selection the v2 topictree endpoint expects:
// {"topics":[{"field":1,...}],"exercises":[...],"videos":[...]}. Fields keep
// their declared order so the URL is stable.
func projection() string {
	group := func(name string, fields []string) string {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			key, _ := json.Marshal(f)
			parts = append(parts, string(key)+":1")
		}
		return `"` + name + `":[{` + strings.Join(parts, ",") + `}]`
	}
	return "{" + strings.Join([]string{
		group("topics", topicAttributes),
		group("exercises", exerciseAttributes),
		group("videos", videoAttributes),
	}, ",") + "}"
}

// TopicTreeURL builds the legacy topictree endpoint for kalang under baseURL.
func TopicTreeURL(baseURL, kalang string) (string, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	endpoint := base.JoinPath("api", "v2", "topics", "topictree")
	params := url.Values{}
	params.Set("lang", kalang)
	params.Set("projection", projection())
	endpoint.RawQuery = params.Encode()
	return endpoint.String(), nil
}

// FetchTopicTree downloads the raw legacy topic tree JSON for kalang.
func (c *Client) FetchTopicTree(ctx context.Context, baseURL, kalang string) ([]byte, error) {
	endpoint, err := TopicTreeURL(baseURL, kalang)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, endpoint)
}
