package faq

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"flightassist/internal/cache"
	"flightassist/internal/model"
	"flightassist/pkg/logger"
)

var sheetEditSuffix = regexp.MustCompile(`/edit.*$`)

// exportURL rewrites a Google Sheets browser URL into its CSV export
// form; already-export URLs and plain CSV URLs pass through untouched.
func exportURL(raw string) string {
	if strings.Contains(raw, "/export?") {
		return raw
	}
	if strings.Contains(raw, "docs.google.com/spreadsheets") {
		return sheetEditSuffix.ReplaceAllString(raw, "/export?format=csv&gid=0")
	}
	return raw
}

// Store loads the FAQ set from a local CSV file merged with an
// optional remote sheet, caching the merged result. The file is the
// durable base; sheet rows extend it, first-by-question wins.
type Store struct {
	filePath   string
	sheetURL   string
	httpClient *http.Client
	normalize  func(s, lang string) string
	items      *cache.TTL[[]model.FAQItem]
	log        logger.Logger
}

// NewStore creates a store. normalize is used only for de-duplication
// across the file/sheet merge.
func NewStore(filePath, sheetURL string, refreshTTL, timeout time.Duration, clock cache.Clock, normalize func(s, lang string) string, log logger.Logger) *Store {
	return &Store{
		filePath:   filePath,
		sheetURL:   exportURL(sheetURL),
		httpClient: &http.Client{Timeout: timeout},
		normalize:  normalize,
		items:      cache.NewTTL[[]model.FAQItem](refreshTTL, 0, clock),
		log:        log,
	}
}

// Load returns the current FAQ set, refreshing from disk and the
// sheet when the cached copy has expired. A refresh that produces
// nothing at all is an error; partial sources degrade silently.
func (s *Store) Load(ctx context.Context) ([]model.FAQItem, error) {
	return s.items.GetOrLoad("faq", func() ([]model.FAQItem, error) {
		return s.load(ctx)
	})
}

// Refresh drops the cache and reloads immediately
func (s *Store) Refresh(ctx context.Context) ([]model.FAQItem, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.items.Set("faq", items)
	return items, nil
}

func (s *Store) load(ctx context.Context) ([]model.FAQItem, error) {
	var merged []model.FAQItem

	if s.filePath != "" {
		fileItems, err := s.loadFile()
		if err != nil {
			s.log.Warn("faq file unavailable", "path", s.filePath, "error", err)
		} else {
			merged = fileItems
		}
	}

	if s.sheetURL != "" {
		sheetItems, err := s.loadSheet(ctx)
		if err != nil {
			s.log.Warn("faq sheet unavailable", "error", err)
		} else {
			merged = s.merge(merged, sheetItems)
		}
	}

	if len(merged) == 0 {
		return nil, fmt.Errorf("faq: no entries available from file or sheet")
	}
	s.log.Info("faq loaded", "entries", len(merged))
	return merged, nil
}

func (s *Store) loadFile() ([]model.FAQItem, error) {
	f, err := os.Open(s.filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f)
}

func (s *Store) loadSheet(ctx context.Context) ([]model.FAQItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sheetURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("faq: sheet returned status %d", resp.StatusCode)
	}
	return ParseCSV(io.LimitReader(resp.Body, 4<<20))
}

// merge appends extras whose normalized question is not already present
func (s *Store) merge(base, extra []model.FAQItem) []model.FAQItem {
	seen := make(map[string]struct{}, len(base))
	for _, item := range base {
		seen[s.normalize(item.Question, "tr")] = struct{}{}
	}
	out := base
	for _, item := range extra {
		key := s.normalize(item.Question, "tr")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
