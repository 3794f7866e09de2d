package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ainews/internal/config"
	"ainews/internal/domain"
	"ainews/internal/source"
)

const scrapeUserAgent = "Mozilla/5.0 (compatible; ainews/1.0)"

// YouTubeAdapter runs a keyword search against the public results page.
// There is no official API on this path: results come from the ytInitialData
// JSON blob embedded in the page scripts.
type YouTubeAdapter struct {
	query    string
	maxItems int
	origin   string
	client   *http.Client
	logger   *slog.Logger
}

var _ source.Adapter = (*YouTubeAdapter)(nil)

// NewYouTubeAdapter wires an HTTP client; nil gets a default one.
func NewYouTubeAdapter(cfg config.YouTubeConfig, client *http.Client, logger *slog.Logger) *YouTubeAdapter {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	origin := strings.TrimRight(cfg.Origin, "/")
	if origin == "" {
		origin = "https://www.youtube.com"
	}
	return &YouTubeAdapter{
		query:    cfg.Query,
		maxItems: cfg.MaxItems,
		origin:   origin,
		client:   client,
		logger:   logger,
	}
}

// Name identifies the trigger inside the registry.
func (y *YouTubeAdapter) Name() string {
	return "youtube"
}

// FreshnessSource is the stored source probed before a video run.
func (y *YouTubeAdapter) FreshnessSource() string {
	return domain.SourceYouTube
}

// Fetch scrapes the search results page and normalizes up to maxItems video
// results. Videos without a long description fall back to their title as the
// enrichable text.
func (y *YouTubeAdapter) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	searchURL := y.origin + "/results?search_query=" + url.QueryEscape(y.query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", scrapeUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	blob, err := initialDataBlob(doc)
	if err != nil {
		return nil, err
	}

	videos, err := parseSearchResults(blob)
	if err != nil {
		return nil, err
	}

	items := make([]domain.RawItem, 0, len(videos))
	for _, video := range videos {
		if y.maxItems > 0 && len(items) >= y.maxItems {
			break
		}
		body := video.description
		if body == "" {
			body = video.title
		}
		items = append(items, domain.RawItem{
			Source:   domain.SourceYouTube,
			Title:    video.title,
			BodyText: body,
			URL:      y.origin + video.urlSuffix,
		})
	}

	y.logger.Debug("search scraped", "query", y.query, "videos", len(items))
	return items, nil
}

// initialDataBlob locates the script node assigning ytInitialData and cuts
// out its JSON object.
func initialDataBlob(doc *goquery.Document) (string, error) {
	var blob string
	doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := s.Text()
		marker := strings.Index(text, "ytInitialData")
		if marker < 0 {
			return true
		}
		start := strings.Index(text[marker:], "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= marker+start {
			return true
		}
		blob = text[marker+start : end+1]
		return false
	})

	if blob == "" {
		return "", fmt.Errorf("ytInitialData not found in results page")
	}
	return blob, nil
}

type videoResult struct {
	title       string
	urlSuffix   string
	description string
}

type textRuns struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
	SimpleText string `json:"simpleText"`
}

func (t textRuns) text() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var b strings.Builder
	for _, run := range t.Runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

type videoRenderer struct {
	VideoID                  string   `json:"videoId"`
	Title                    textRuns `json:"title"`
	DetailedMetadataSnippets []struct {
		SnippetText textRuns `json:"snippetText"`
	} `json:"detailedMetadataSnippets"`
	NavigationEndpoint struct {
		CommandMetadata struct {
			WebCommandMetadata struct {
				URL string `json:"url"`
			} `json:"webCommandMetadata"`
		} `json:"commandMetadata"`
	} `json:"navigationEndpoint"`
}

func parseSearchResults(blob string) ([]videoResult, error) {
	var parsed struct {
		Contents struct {
			TwoColumnSearchResultsRenderer struct {
				PrimaryContents struct {
					SectionListRenderer struct {
						Contents []struct {
							ItemSectionRenderer struct {
								Contents []struct {
									VideoRenderer *videoRenderer `json:"videoRenderer"`
								} `json:"contents"`
							} `json:"itemSectionRenderer"`
						} `json:"contents"`
					} `json:"sectionListRenderer"`
				} `json:"primaryContents"`
			} `json:"twoColumnSearchResultsRenderer"`
		} `json:"contents"`
	}
	if err := json.Unmarshal([]byte(blob), &parsed); err != nil {
		return nil, fmt.Errorf("decode ytInitialData: %w", err)
	}

	var videos []videoResult
	sections := parsed.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents
	for _, section := range sections {
		for _, content := range section.ItemSectionRenderer.Contents {
			r := content.VideoRenderer
			if r == nil || r.VideoID == "" {
				continue
			}

			suffix := r.NavigationEndpoint.CommandMetadata.WebCommandMetadata.URL
			if suffix == "" {
				suffix = "/watch?v=" + r.VideoID
			}

			var description string
			if len(r.DetailedMetadataSnippets) > 0 {
				description = strings.TrimSpace(r.DetailedMetadataSnippets[0].SnippetText.text())
			}

			videos = append(videos, videoResult{
				title:       strings.TrimSpace(r.Title.text()),
				urlSuffix:   suffix,
				description: description,
			})
		}
	}
	return videos, nil
}
