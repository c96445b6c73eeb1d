// Package parser turns the free text returned by the language model into a
// structured {subject, body} draft. Model output loosely follows the shape
// the prompt mandates (a "Subject:" line, then an "Application:" section)
// but arrives with formatting noise: markdown emphasis, stray bullets,
// Windows line endings, labels in unexpected places. The parser is a small
// line classifier with three states (seeking-subject, seeking-body, in-body)
// and documented fallback rules for every missing label.
package parser

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"

	"github.com/svsu-dev/samadhan/internal/domain"
)

const (
	subjectLabel = "subject"
	bodyLabel    = "application"
)

// letterSkeleton is the minimal formal letter used when the model's body
// omits the institution name, and as the optional templated fallback for
// unparseable responses. Department and issue text are embedded verbatim.
const letterSkeleton = `Dear Sir/Madam,

I am writing to the {{ department }} department of {{ institution }} regarding the following issue:

{{ issue }}

I request you to kindly look into this matter at the earliest.

Thank you for your attention.

Sincerely,
{% if applicant_name != "" %}{{ applicant_name }}{% else %}[Your Name]{% endif %}`

// Context carries the request fields the parser needs for the
// institution-mention guarantee and skeleton synthesis.
type Context struct {
	Institution   string
	Department    domain.Department
	IssueText     string
	ApplicantName string
}

// Parser extracts {subject, body} pairs from raw model text.
type Parser struct {
	skeleton *liquid.Template
}

// New compiles the letter skeleton template.
func New() (*Parser, error) {
	tpl, err := liquid.NewEngine().ParseString(letterSkeleton)
	if err != nil {
		return nil, fmt.Errorf("parse letter skeleton: %w", err)
	}
	return &Parser{skeleton: tpl}, nil
}

// Parse extracts the subject and body from raw model output.
//
// Fallback policy (strict mode):
//   - subject label missing, body label present → subject is the first
//     non-empty line before the body label
//   - body label missing, subject label present → body is everything after
//     the subject line
//   - neither label present, or empty input → domain.ErrMalformedResponse
//
// The returned body always mentions the institution: when the model's text
// omits it, the letter skeleton is substituted.
func (p *Parser) Parse(raw string, ctx Context) (domain.DraftApplication, error) {
	lines := classifyLines(raw)
	if len(lines) == 0 {
		return domain.DraftApplication{}, fmt.Errorf("%w: empty response", domain.ErrMalformedResponse)
	}

	subjectIdx, subject := findSubject(lines)
	bodyIdx, bodyRemainder := findBodyLabel(lines, subjectIdx)

	if subjectIdx < 0 && bodyIdx < 0 {
		return domain.DraftApplication{}, fmt.Errorf("%w: no subject or body label", domain.ErrMalformedResponse)
	}

	if subjectIdx < 0 {
		// Body label present: take the first non-empty line before it.
		for i := 0; i < bodyIdx; i++ {
			if lines[i] != "" {
				subject = lines[i]
				break
			}
		}
		if subject == "" {
			return domain.DraftApplication{}, fmt.Errorf("%w: no usable subject line", domain.ErrMalformedResponse)
		}
	}

	var bodyLines []string
	switch {
	case bodyIdx >= 0:
		if bodyRemainder != "" {
			bodyLines = append(bodyLines, bodyRemainder)
		}
		bodyLines = append(bodyLines, lines[bodyIdx+1:]...)
	default:
		bodyLines = lines[subjectIdx+1:]
	}
	body := strings.TrimSpace(strings.Join(bodyLines, "\n"))

	if subject == "" || body == "" {
		return domain.DraftApplication{}, fmt.Errorf("%w: empty subject or body after parsing", domain.ErrMalformedResponse)
	}

	if !strings.Contains(body, ctx.Institution) {
		body = p.renderSkeleton(ctx)
	}

	return domain.DraftApplication{Subject: subject, Body: body}, nil
}

// FallbackLetter returns the templated draft used when strict parsing is
// disabled and the model's output could not be parsed.
func (p *Parser) FallbackLetter(ctx Context) domain.DraftApplication {
	return domain.DraftApplication{
		Subject: fmt.Sprintf("Application to the %s Department", ctx.Department),
		Body:    p.renderSkeleton(ctx),
	}
}

func (p *Parser) renderSkeleton(ctx Context) string {
	out, err := p.skeleton.RenderString(liquid.Bindings{
		"institution":    ctx.Institution,
		"department":     string(ctx.Department),
		"issue":          ctx.IssueText,
		"applicant_name": strings.TrimSpace(ctx.ApplicantName),
	})
	if err != nil {
		// String bindings cannot fail in practice; keep the guarantee anyway.
		return fmt.Sprintf("Dear Sir/Madam,\n\nI am writing to the %s department of %s regarding the following issue:\n\n%s\n\nSincerely,\n[Your Name]",
			ctx.Department, ctx.Institution, ctx.IssueText)
	}
	return out
}

// classifyLines normalizes line endings, strips emphasis markup, and returns
// the trimmed lines of the response.
func classifyLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	rawLines := strings.Split(raw, "\n")
	lines := make([]string, 0, len(rawLines))
	for _, l := range rawLines {
		lines = append(lines, stripEmphasis(strings.TrimSpace(l)))
	}
	// Drop leading and trailing blank lines, keep interior ones (they
	// separate paragraphs).
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// stripEmphasis removes markdown bold/italic markers from a line. Paired
// asterisks are emphasis and are deleted; a lone leftover asterisk is a list
// marker and becomes a bullet glyph so list structure survives.
func stripEmphasis(line string) string {
	line = strings.ReplaceAll(line, "**", "")
	switch n := strings.Count(line, "*"); {
	case n == 0:
		return line
	case n%2 == 0:
		return strings.ReplaceAll(line, "*", "")
	default:
		line = strings.Replace(line, "*", "\x00", 1)
		line = strings.ReplaceAll(line, "*", "")
		return strings.Replace(line, "\x00", "•", 1)
	}
}

// findSubject returns the index of the first line carrying the subject
// label, and the label-stripped subject text. The label must be followed by
// a ':' or '-' separator (or end the line) so that ordinary words sharing
// the prefix, like "Subjective", are not mistaken for it.
func findSubject(lines []string) (int, string) {
	for i, l := range lines {
		if !strings.HasPrefix(strings.ToLower(l), subjectLabel) {
			continue
		}
		rest := strings.TrimLeft(l[len(subjectLabel):], " ")
		if rest != "" && rest[0] != ':' && rest[0] != '-' {
			continue
		}
		return i, trimLabel(l, subjectLabel)
	}
	return -1, ""
}

// findBodyLabel returns the index of the body-label line (searching after
// the subject line) and any text following the label on the same line.
func findBodyLabel(lines []string, after int) (int, string) {
	for i, l := range lines {
		if i <= after {
			continue
		}
		lower := strings.ToLower(l)
		if lower == bodyLabel || strings.Contains(lower, bodyLabel+":") {
			idx := strings.Index(lower, bodyLabel)
			rest := l[idx+len(bodyLabel):]
			return i, strings.TrimSpace(strings.TrimLeft(rest, ":- "))
		}
	}
	return -1, ""
}

// trimLabel strips a leading label plus its separator from a line.
func trimLabel(line, label string) string {
	rest := line[len(label):]
	return strings.TrimSpace(strings.TrimLeft(rest, ":- "))
}
