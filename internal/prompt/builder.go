// Package prompt turns a grievance form submission into the instruction sent
// to the language-model collaborator. The instruction pins the response shape
// (a "Subject:" line, then an "Application:" section) so the parser has
// labels to anchor on.
package prompt

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"

	"github.com/svsu-dev/samadhan/internal/domain"
)

const promptTemplate = `Write a formal application letter addressed to the {{ department }} department of {{ institution }} regarding the following issue:

Issue: {{ issue }}
{% if applicant_name != "" %}
The applicant is {{ applicant_name }}, reachable at {{ email }}.
{% else %}
The applicant can be reached at {{ email }}.
{% endif %}
Respond in exactly this format: a line beginning with "Subject:" followed by a concise subject line, then a blank line, then a line containing "Application:", then a blank line, then the complete letter body. Keep the register polite, concise and formal.`

// Builder renders the generation prompt. Output is deterministic for a given
// input; the issue text is embedded verbatim and not sanitized.
type Builder struct {
	institution string
	tpl         *liquid.Template
}

// NewBuilder compiles the prompt template for the given institution.
func NewBuilder(institution string) (*Builder, error) {
	tpl, err := liquid.NewEngine().ParseString(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Builder{institution: institution, tpl: tpl}, nil
}

// Build renders the instruction string for one generation request.
func (b *Builder) Build(in domain.GenerationInput) string {
	out, err := b.tpl.RenderString(liquid.Bindings{
		"institution":    b.institution,
		"department":     string(in.Department),
		"issue":          in.IssueText,
		"applicant_name": strings.TrimSpace(in.ApplicantName),
		"email":          in.Email,
	})
	if err != nil {
		// String bindings cannot fail to render in practice; keep the
		// never-errors contract with a plain fallback.
		return fmt.Sprintf(
			"Write a formal application letter to the %s department of %s regarding the following issue:\n\nIssue: %s\n\nStart with a line beginning with \"Subject:\", then an \"Application:\" section with the letter body.",
			in.Department, b.institution, in.IssueText,
		)
	}
	return out
}
