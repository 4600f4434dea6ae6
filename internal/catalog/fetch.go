package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

// DefaultRatingsURL is the public EA FC ratings endpoint
const DefaultRatingsURL = "https://drop-api.ea.com/rating/ea-sports-fc"

// Fetcher downloads the top rated players page by page
type Fetcher struct {
	baseURL    string
	pageSize   int
	pages      int
	httpClient *http.Client
}

// NewFetcher creates a fetcher for five pages of 100, the ratings site default
func NewFetcher(baseURL string) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultRatingsURL
	}
	return &Fetcher{
		baseURL:  baseURL,
		pageSize: 100,
		pages:    5,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ratingsItem mirrors the fields of a ratings API item the catalog keeps
type ratingsItem struct {
	models.Player
	PreferredFoot int `json:"preferredFoot"`
}

type ratingsPage struct {
	Items []ratingsItem `json:"items"`
}

// Fetch downloads every page concurrently and returns players in page order
func (f *Fetcher) Fetch(ctx context.Context) ([]models.Player, error) {
	pages := make([][]models.Player, f.pages)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < f.pages; i++ {
		g.Go(func() error {
			players, err := f.fetchPage(ctx, i*f.pageSize)
			if err != nil {
				return err
			}
			pages[i] = players
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var all []models.Player
	for _, page := range pages {
		for _, p := range page {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			all = append(all, p)
		}
	}
	logger.Info("Fetched player ratings", "players", len(all), "pages", f.pages)
	return all, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, offset int) ([]models.Player, error) {
	q := url.Values{}
	q.Set("locale", "en")
	q.Set("limit", strconv.Itoa(f.pageSize))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("gender", "0")
	q.Set("orderBy", "ovr:desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ratings request failed (offset %d): %w", offset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ratings request failed (status %d, offset %d): %s", resp.StatusCode, offset, string(body))
	}

	var page ratingsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode ratings page (offset %d): %w", offset, err)
	}

	players := make([]models.Player, 0, len(page.Items))
	for _, item := range page.Items {
		p := item.Player
		p.PreferredFoot = "Left"
		if item.PreferredFoot == 1 {
			p.PreferredFoot = "Right"
		}
		players = append(players, p)
	}
	return players, nil
}
