package kaapi

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"kachef/internal/services"
)

type transcriptList struct {
	Tracks []struct {
		LangCode string `xml:"lang_code,attr"`
	} `xml:"track"`
}

// SubtitleLanguages lists the caption languages published for a YouTube
// video. urlTemplate carries a {youtube_id} placeholder. Codes are returned
// in listing order without duplicates.
func (c *Client) SubtitleLanguages(ctx context.Context, urlTemplate, youtubeID string) ([]string, error) {
	endpoint := strings.ReplaceAll(urlTemplate, "{youtube_id}", url.QueryEscape(youtubeID))
	data, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	var list transcriptList
	if err := xml.Unmarshal(data, &list); err != nil {
		return nil, services.Wrap(services.ErrExternal, "kaapi", "subtitle languages", youtubeID, err)
	}
	seen := map[string]bool{}
	var codes []string
	for _, track := range list.Tracks {
		code := strings.TrimSpace(track.LangCode)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}
