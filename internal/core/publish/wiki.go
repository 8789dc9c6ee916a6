package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/perhapsishould/contract-processor/internal/core/record"
	"github.com/rs/zerolog/log"
)

// WikiConfig configures the wiki page client.
type WikiConfig struct {
	BaseURL      string
	Token        string
	DefaultSpace string
	Timeout      time.Duration
}

// WikiPublisher creates pages through a wiki REST API.
type WikiPublisher struct {
	cfg  WikiConfig
	http *http.Client
}

func NewWikiPublisher(cfg WikiConfig) *WikiPublisher {
	if cfg.DefaultSpace == "" {
		cfg.DefaultSpace = "contracts"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &WikiPublisher{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type createPageRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Space   string `json:"space"`
	Content string `json:"content"`
	Format  string `json:"format"`
}

type createPageResponse struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

func (p *WikiPublisher) Publish(ctx context.Context, rec record.ContractRecord, target string) (string, error) {
	space := p.cfg.DefaultSpace
	if target != "" {
		space = target
	}

	reqBody := createPageRequest{
		Title:   rec.Title,
		Slug:    slug.Make(rec.Title),
		Space:   space,
		Content: renderPage(rec),
		Format:  "markdown",
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &PublishingError{Message: "encode page request", Err: err}
	}

	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/api/v1/pages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &PublishingError{Message: "build page request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	start := time.Now()
	resp, err := p.http.Do(req)
	if err != nil {
		return "", &PublishingError{Message: fmt.Sprintf("wiki unreachable: %v", err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)

	log.Debug().
		Str("space", space).
		Str("slug", reqBody.Slug).
		Int("status", resp.StatusCode).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("wiki publish response")

	var pageResp createPageResponse
	_ = json.Unmarshal(raw, &pageResp)

	if resp.StatusCode/100 != 2 {
		msg := pageResp.Message
		if msg == "" {
			msg = fmt.Sprintf("wiki returned status %d", resp.StatusCode)
		}
		return "", &PublishingError{Message: msg}
	}

	if pageResp.URL == "" {
		return "", &PublishingError{Message: "wiki response missing page url"}
	}
	return pageResp.URL, nil
}
