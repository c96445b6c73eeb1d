// Package reference serves the static campus reference content shown beside
// the grievance form: the administrative and infrastructure issue lists and
// the optional campus notices feed.
package reference

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/redis/go-redis/v9"

	"github.com/svsu-dev/samadhan/internal/config"
	"github.com/svsu-dev/samadhan/internal/pkg/logger"
)

const noticesCacheKey = "reference:notices"

// Defaults shown when no lists are configured. These mirror the categories
// the portal's front end groups grievances under.
var (
	defaultAdminIssues = []string{
		"Delay in issuing bonafide and transfer certificates",
		"Examination form portal rejecting valid registrations",
		"Scholarship disbursement pending beyond the announced date",
		"Library membership renewal requires repeated office visits",
		"Fee receipt corrections taking more than a week",
	}
	defaultInfraIssues = []string{
		"WiFi connectivity drops in the reading hall and hostels",
		"Drinking water coolers out of service in the academic block",
		"Insufficient lighting on the path between hostel and library",
		"Broken benches and fans in several lecture rooms",
		"Lift in the main building frequently out of order",
	}
)

// Notice is one campus announcement from the configured feed.
type Notice struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published"`
}

// FeedParser fetches and parses an RSS/Atom feed.
type FeedParser interface {
	ParseURLWithContext(url string, ctx context.Context) (*gofeed.Feed, error)
}

// Service holds the static lists and the notices feed client.
type Service struct {
	adminIssues []string
	infraIssues []string
	feedURL     string
	feedTimeout time.Duration
	parser      FeedParser
	cache       *redis.Client // optional
	cacheTTL    time.Duration
}

// New builds the reference service from configuration. cache may be nil.
func New(cfg config.ReferenceConfig, cache *redis.Client, cacheTTL time.Duration) *Service {
	admin := cfg.AdminIssues
	if len(admin) == 0 {
		admin = defaultAdminIssues
	}
	infra := cfg.InfraIssues
	if len(infra) == 0 {
		infra = defaultInfraIssues
	}

	return &Service{
		adminIssues: admin,
		infraIssues: infra,
		feedURL:     cfg.NoticesFeedURL,
		feedTimeout: cfg.FeedTimeout(),
		parser:      gofeed.NewParser(),
		cache:       cache,
		cacheTTL:    cacheTTL,
	}
}

// AdminIssues returns the administrative issue list.
func (s *Service) AdminIssues() []string { return s.adminIssues }

// InfraIssues returns the infrastructure issue list.
func (s *Service) InfraIssues() []string { return s.infraIssues }

// NoticesEnabled reports whether a notices feed is configured.
func (s *Service) NoticesEnabled() bool { return s.feedURL != "" }

// Notices fetches the campus notices feed, newest ten entries. Results are
// cached briefly when Redis is configured; a cache failure falls through to
// the feed.
func (s *Service) Notices(ctx context.Context) ([]Notice, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, noticesCacheKey).Bytes(); err == nil {
			var cached []Notice
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.feedTimeout)
	defer cancel()

	feed, err := s.parser.ParseURLWithContext(s.feedURL, fetchCtx)
	if err != nil {
		return nil, err
	}

	notices := make([]Notice, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(notices) == 10 {
			break
		}
		n := Notice{Title: item.Title, Link: item.Link}
		if item.PublishedParsed != nil {
			n.PublishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			n.PublishedAt = *item.UpdatedParsed
		}
		notices = append(notices, n)
	}

	if s.cache != nil {
		if data, err := json.Marshal(notices); err == nil {
			if err := s.cache.Set(ctx, noticesCacheKey, data, s.cacheTTL).Err(); err != nil {
				logger.Debug("notices cache write failed", "error", err)
			}
		}
	}
	return notices, nil
}
