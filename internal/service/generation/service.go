// Package generation orchestrates the drafting pipeline: validate the form
// input, build the prompt, call the language-model collaborator under a
// bounded timeout, and parse its reply into a structured draft.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/svsu-dev/samadhan/internal/config"
	"github.com/svsu-dev/samadhan/internal/domain"
	"github.com/svsu-dev/samadhan/internal/parser"
	"github.com/svsu-dev/samadhan/internal/pkg/logger"
	"github.com/svsu-dev/samadhan/internal/prompt"
	"github.com/svsu-dev/samadhan/internal/textgen"
)

// Service produces draft applications. Nothing is persisted here: records
// are written only on explicit submission, so a student can regenerate and
// edit freely without leaving orphans behind.
type Service struct {
	generator      textgen.Generator
	builder        *prompt.Builder
	parser         *parser.Parser
	institution    string
	emailSuffix    string
	timeout        time.Duration
	fallbackLetter bool
}

// New wires the drafting pipeline.
func New(gen textgen.Generator, b *prompt.Builder, p *parser.Parser, inst config.InstitutionConfig, gcfg config.GeneratorConfig) *Service {
	return &Service{
		generator:      gen,
		builder:        b,
		parser:         p,
		institution:    inst.Name,
		emailSuffix:    inst.EmailSuffix,
		timeout:        gcfg.Timeout(),
		fallbackLetter: gcfg.FallbackLetter,
	}
}

// Generate validates the input and returns a draft application.
//
// Failure modes:
//   - *domain.ValidationError: bad input; the collaborator is never called
//   - domain.ErrGenerationUnavailable: collaborator unreachable, timed out,
//     or returned no text
//   - domain.ErrMalformedResponse: reply could not be parsed (unless the
//     templated-fallback mode is enabled)
func (s *Service) Generate(ctx context.Context, in domain.GenerationInput) (domain.DraftApplication, error) {
	if err := in.Validate(s.emailSuffix); err != nil {
		return domain.DraftApplication{}, err
	}

	instruction := s.builder.Build(in)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generator.Generate(genCtx, instruction)
	if err != nil || raw == "" {
		logger.Warn("generation call failed",
			"department", string(in.Department),
			"error", fmt.Sprintf("%v", err),
		)
		return domain.DraftApplication{}, domain.ErrGenerationUnavailable
	}

	pctx := parser.Context{
		Institution:   s.institution,
		Department:    in.Department,
		IssueText:     in.IssueText,
		ApplicantName: in.ApplicantName,
	}

	draft, err := s.parser.Parse(raw, pctx)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedResponse) && s.fallbackLetter {
			logger.Warn("unparseable model output, using templated letter",
				"department", string(in.Department))
			return s.parser.FallbackLetter(pctx), nil
		}
		// Raw model output is diagnostic-only: included at DEBUG with
		// embedded addresses redacted, never surfaced to the client.
		fields := []interface{}{
			"department", string(in.Department),
			"error", err,
		}
		if logger.DebugEnabled() {
			fields = append(fields, "raw", truncate(raw, 2000))
		}
		logger.Error("model output could not be parsed", fields...)
		return domain.DraftApplication{}, domain.ErrMalformedResponse
	}

	return draft, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
