// Package issues handles grievance submission and the recent-issues listing.
// Submission is the only write path in the portal: the record is persisted
// once, an outbound email is composed for the routed department, and the
// student opens the compose link in their own mail client.
package issues

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/svsu-dev/samadhan/internal/directory"
	"github.com/svsu-dev/samadhan/internal/domain"
	"github.com/svsu-dev/samadhan/internal/mailer"
	"github.com/svsu-dev/samadhan/internal/pkg/logger"
)

// recentLimit caps the public listing. Older records stay in the store but
// are not served.
const recentLimit = 10

const recentCacheKey = "issues:recent"

// Repository persists grievance records.
type Repository interface {
	Insert(ctx context.Context, rec domain.IssueRecord) error
	ListRecent(ctx context.Context, limit int) ([]domain.IssueSummary, error)
}

// MailSender optionally delivers the composed letter directly. A nil sender
// means compose-links only.
type MailSender interface {
	Send(ctx context.Context, m mailer.Message) error
}

// SubmissionInput is the reviewed draft plus the original form fields.
type SubmissionInput struct {
	ApplicantName string            `json:"applicantName"`
	Email         string            `json:"email"`
	IssueText     string            `json:"issue"`
	Department    domain.Department `json:"department"`
	Subject       string            `json:"subject"`
	Body          string            `json:"application"`
}

// SubmissionResult is returned after a successful submission. The caller
// opens whichever compose URL suits the device.
type SubmissionResult struct {
	Message   string `json:"message"`
	MailtoURL string `json:"mailtoURL"`
	GmailURL  string `json:"gmailURL"`
}

// Service coordinates persistence, routing and email composition.
type Service struct {
	repo        Repository
	dir         *directory.Directory
	cache       *redis.Client // optional
	sender      MailSender    // optional
	emailSuffix string
	cacheTTL    time.Duration
	now         func() time.Time
	newID       func() string
}

// New builds the submission service. cache and sender may be nil.
func New(repo Repository, dir *directory.Directory, cache *redis.Client, sender MailSender, emailSuffix string, cacheTTL time.Duration) *Service {
	return &Service{
		repo:        repo,
		dir:         dir,
		cache:       cache,
		sender:      sender,
		emailSuffix: emailSuffix,
		cacheTTL:    cacheTTL,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Submit validates and persists the grievance, then composes the outbound
// email for the routed department. An unknown department is routed to the
// default recipient, never rejected. A direct-send failure is logged and
// does not fail the submission.
func (s *Service) Submit(ctx context.Context, in SubmissionInput) (SubmissionResult, error) {
	rec := domain.IssueRecord{
		ID:            s.newID(),
		ApplicantName: in.ApplicantName,
		Email:         in.Email,
		IssueText:     in.IssueText,
		Department:    in.Department,
		Subject:       in.Subject,
		Body:          in.Body,
		CreatedAt:     s.now().UTC(),
	}
	if err := rec.Validate(s.emailSuffix); err != nil {
		return SubmissionResult{}, err
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		return SubmissionResult{}, err
	}
	s.invalidateRecent(ctx)

	entry := s.dir.Lookup(rec.Department)
	msg := mailer.Message{
		To:      entry.To,
		CC:      entry.CC,
		BCC:     entry.BCC,
		Subject: rec.Subject,
		Body:    rec.Body,
	}

	if s.sender != nil {
		if err := s.sender.Send(ctx, msg); err != nil {
			logger.Warn("direct send failed, compose links still returned",
				"department", string(rec.Department),
				"error", err,
			)
		}
	}

	logger.Info("issue submitted",
		"id", rec.ID,
		"department", string(rec.Department),
		"email", rec.Email,
	)

	return SubmissionResult{
		Message:   "Issue submitted successfully",
		MailtoURL: mailer.MailtoURL(msg),
		GmailURL:  mailer.GmailComposeURL(msg),
	}, nil
}

// ListRecent returns the newest submissions, most recent first, capped at
// ten. Results are cached briefly when Redis is configured; a cache failure
// falls through to the store.
func (s *Service) ListRecent(ctx context.Context) ([]domain.IssueSummary, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, recentCacheKey).Bytes(); err == nil {
			var cached []domain.IssueSummary
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	summaries, err := s.repo.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []domain.IssueSummary{}
	}

	if s.cache != nil {
		if data, err := json.Marshal(summaries); err == nil {
			if err := s.cache.Set(ctx, recentCacheKey, data, s.cacheTTL).Err(); err != nil {
				logger.Debug("recent-issues cache write failed", "error", err)
			}
		}
	}
	return summaries, nil
}

func (s *Service) invalidateRecent(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, recentCacheKey).Err(); err != nil {
		logger.Debug("recent-issues cache invalidation failed", "error", err)
	}
}
