package parser

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svsu-dev/samadhan/internal/domain"
)

const institution = "Shri Vishwakarma Skill University"

func testCtx() Context {
	return Context{
		Institution:   institution,
		Department:    domain.DeptLibrary,
		IssueText:     "WiFi is down",
		ApplicantName: "Asha Rao",
	}
}

func newParser(t *testing.T) *Parser {
	t.Helper()
	p, err := New()
	require.NoError(t, err)
	return p
}

func TestParse_WellFormed(t *testing.T) {
	p := newParser(t)

	raw := "Subject: Request to Restore Library WiFi\n\nApplication:\n\nDear Sir/Madam,\n\nThe WiFi in the " + institution + " library has been down for three days.\n\nSincerely,\nAsha Rao"

	draft, err := p.Parse(raw, testCtx())
	require.NoError(t, err)

	assert.Equal(t, "Request to Restore Library WiFi", draft.Subject)
	assert.True(t, strings.HasPrefix(draft.Body, "Dear Sir/Madam,"))
	assert.Contains(t, draft.Body, institution)
	assert.NotContains(t, draft.Subject, "Subject")
	assert.NotContains(t, draft.Body, "Application:")
}

func TestParse_LabelCaseInsensitive(t *testing.T) {
	p := newParser(t)

	raw := "SUBJECT: Hostel Maintenance\n\nAPPLICATION:\n\nDear Registrar of " + institution + ",\n\nPlease fix the taps."

	draft, err := p.Parse(raw, testCtx())
	require.NoError(t, err)
	assert.Equal(t, "Hostel Maintenance", draft.Subject)
	assert.Contains(t, draft.Body, "Please fix the taps.")
}

func TestParse_SubjectLabelNeedsSeparator(t *testing.T) {
	p := newParser(t)

	// A word merely sharing the label's prefix must not be mistaken for it.
	raw := "Subjective concerns were raised by several students.\n\nSubject: Reading Hall Lighting\n\nApplication:\n\nDear Sir of " + institution + ",\n\nThe lights flicker."

	draft, err := p.Parse(raw, testCtx())
	require.NoError(t, err)
	assert.Equal(t, "Reading Hall Lighting", draft.Subject)
}

func TestParse_SubjectLabelDashSeparator(t *testing.T) {
	p := newParser(t)

	raw := "Subject - Hostel Water Supply\n\nApplication:\n\nDear Warden of " + institution + ",\n\nThe supply stops at noon."

	draft, err := p.Parse(raw, testCtx())
	require.NoError(t, err)
	assert.Equal(t, "Hostel Water Supply", draft.Subject)
}

func TestParse_EmphasisMarkupStripped(t *testing.T) {
	p := newParser(t)

	raw := "**Subject:** Request for *Urgent* Action\n\nApplication:\n\nDear Sir,\n\nThis concerns " + institution + " and is **important**."

	draft, err := p.Parse(raw, testCtx())
	require.NoError(t, err)

	assert.Equal(t, "Request for Urgent Action", draft.Subject)
	assert.Contains(t, draft.Body, "This concerns "+institution+" and is important.")
	assert.NotContains(t, draft.Subject, "*")
	assert.NotContains(t, draft.Body, "*")
}

func TestParse_BulletAsterisksPreserved(t *testing.T) {
	p := newParser(t)

	raw := "Subject: Lab Equipment\n\nApplication:\n\nDear Sir of " + institution + ",\n\nThe following are broken:\n\n* Microscope 4\n* Centrifuge 2\n\nSincerely"

	draft, err := p.Parse(raw, testCtx())
	require.NoError(t, err)

	assert.Contains(t, draft.Body, "• Microscope 4")
	assert.Contains(t, draft.Body, "• Centrifuge 2")
}

func TestParse_WindowsLineEndings(t *testing.T) {
	p := newParser(t)

	raw := "Subject: CRLF Handling\r\n\r\nApplication:\r\n\r\nDear Sir,\r\n\r\nText about " + institution + ".\r\n"

	draft, err := p.Parse(raw, testCtx())
	require.NoError(t, err)
	assert.Equal(t, "CRLF Handling", draft.Subject)
	assert.NotContains(t, draft.Body, "\r")
	assert.Contains(t, draft.Body, institution)
}

func TestParse_NoBodyLabel_EverythingAfterSubject(t *testing.T) {
	p := newParser(t)

	raw := "Subject: Fee Receipt\n\nDear Accounts Office of " + institution + ",\n\nI have not received my receipt."

	draft, err := p.Parse(raw, testCtx())
	require.NoError(t, err)
	assert.Equal(t, "Fee Receipt", draft.Subject)
	assert.True(t, strings.HasPrefix(draft.Body, "Dear Accounts Office"))
}

func TestParse_NoSubjectLabel_FirstLineBeforeBodyLabel(t *testing.T) {
	p := newParser(t)

	raw := "Request for Transcript\n\nApplication:\n\nDear Sir of " + institution + ",\n\nKindly issue my transcript."

	draft, err := p.Parse(raw, testCtx())
	require.NoError(t, err)
	assert.Equal(t, "Request for Transcript", draft.Subject)
	assert.Contains(t, draft.Body, "Kindly issue my transcript.")
}

func TestParse_NoLabelsAtAll_Fails(t *testing.T) {
	p := newParser(t)

	_, err := p.Parse("Dear Sir,\n\nplease help with the WiFi.\n\nThanks", testCtx())
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestParse_EmptyResponse_Fails(t *testing.T) {
	p := newParser(t)

	for _, raw := range []string{"", "   ", "\r\n\r\n"} {
		_, err := p.Parse(raw, testCtx())
		assert.ErrorIs(t, err, domain.ErrMalformedResponse, "input %q", raw)
	}
}

func TestParse_OnlySubjectLabelNoBodyText_Fails(t *testing.T) {
	p := newParser(t)

	_, err := p.Parse("Subject: Something", testCtx())
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestParse_InstitutionGuarantee(t *testing.T) {
	p := newParser(t)

	// Model wrote a letter but never named the university
	raw := "Subject: WiFi Outage\n\nApplication:\n\nDear Sir,\n\nThe WiFi is broken.\n\nSincerely,\nA Student"

	draft, err := p.Parse(raw, testCtx())
	require.NoError(t, err)

	assert.Contains(t, draft.Body, institution)
	assert.Contains(t, draft.Body, "Library")
	assert.Contains(t, draft.Body, "WiFi is down") // issue text verbatim
	assert.Contains(t, draft.Body, "Asha Rao")
}

func TestParse_Idempotent(t *testing.T) {
	p := newParser(t)

	raw := "Subject: Reissue of ID Card\n\nApplication:\n\nDear Sir,\n\nI am a student of " + institution + ".\n\n• Lost card on Monday\n• Police report attached\n\nSincerely,\nAsha"

	first, err := p.Parse(raw, testCtx())
	require.NoError(t, err)

	rewrapped := fmt.Sprintf("Subject: %s\n\nApplication:\n\n%s", first.Subject, first.Body)
	second, err := p.Parse(rewrapped, testCtx())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFallbackLetter(t *testing.T) {
	p := newParser(t)

	draft := p.FallbackLetter(testCtx())

	assert.Equal(t, "Application to the Library Department", draft.Subject)
	assert.Contains(t, draft.Body, institution)
	assert.Contains(t, draft.Body, "WiFi is down")
	assert.Contains(t, draft.Body, "Asha Rao")
}

func TestFallbackLetter_NoApplicantName(t *testing.T) {
	p := newParser(t)

	ctx := testCtx()
	ctx.ApplicantName = ""
	draft := p.FallbackLetter(ctx)

	assert.Contains(t, draft.Body, "[Your Name]")
}

// TestParse_RandomLabelPlacement exercises the classifier with labels moved
// around, duplicated noise lines, and mixed line endings. The parser must
// either return a non-empty draft or fail with ErrMalformedResponse, with
// no panics and no empty fields.
func TestParse_RandomLabelPlacement(t *testing.T) {
	p := newParser(t)
	rng := rand.New(rand.NewSource(42))

	fragments := []string{
		"Subject: Random Topic",
		"Application:",
		"Dear Sir,",
		"Some paragraph about campus matters.",
		"* bullet item",
		"**bold aside**",
		"",
		"Sincerely,",
	}

	for i := 0; i < 500; i++ {
		n := rng.Intn(len(fragments)) + 1
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteString(fragments[rng.Intn(len(fragments))])
			if rng.Intn(4) == 0 {
				b.WriteString("\r\n")
			} else {
				b.WriteString("\n")
			}
		}

		draft, err := p.Parse(b.String(), testCtx())
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
			continue
		}
		assert.NotEmpty(t, draft.Subject)
		assert.NotEmpty(t, draft.Body)
		assert.Contains(t, draft.Body, institution)
	}
}
