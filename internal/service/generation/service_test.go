package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svsu-dev/samadhan/internal/config"
	"github.com/svsu-dev/samadhan/internal/domain"
	"github.com/svsu-dev/samadhan/internal/parser"
	"github.com/svsu-dev/samadhan/internal/prompt"
)

// generatorFunc adapts a function to textgen.Generator.
type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

const institution = "Shri Vishwakarma Skill University"

func newService(t *testing.T, gen generatorFunc, fallback bool) *Service {
	t.Helper()
	b, err := prompt.NewBuilder(institution)
	require.NoError(t, err)
	p, err := parser.New()
	require.NoError(t, err)

	inst := config.InstitutionConfig{Name: institution, EmailSuffix: "@svsu.ac.in"}
	gcfg := config.GeneratorConfig{TimeoutSeconds: 2, FallbackLetter: fallback}
	return New(gen, b, p, inst, gcfg)
}

func validInput() domain.GenerationInput {
	return domain.GenerationInput{
		ApplicantName: "Asha Rao",
		Email:         "asha@svsu.ac.in",
		IssueText:     "WiFi is down",
		Department:    domain.DeptLibrary,
	}
}

func TestGenerate_Success(t *testing.T) {
	var seenPrompt string
	gen := generatorFunc(func(_ context.Context, p string) (string, error) {
		seenPrompt = p
		return "Subject: WiFi Restoration Request\n\nApplication:\n\nDear Sir,\n\nI write on behalf of students of " + institution + ".\n\nSincerely,\nAsha", nil
	})

	svc := newService(t, gen, false)
	draft, err := svc.Generate(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "WiFi Restoration Request", draft.Subject)
	assert.Contains(t, draft.Body, institution)
	// Prompt carried the form fields through to the collaborator
	assert.Contains(t, seenPrompt, "WiFi is down")
	assert.Contains(t, seenPrompt, "Library")
}

func TestGenerate_InvalidEmailNeverCallsCollaborator(t *testing.T) {
	called := false
	gen := generatorFunc(func(context.Context, string) (string, error) {
		called = true
		return "", nil
	})

	svc := newService(t, gen, false)
	in := validInput()
	in.Email = "asha@gmail.com"

	_, err := svc.Generate(context.Background(), in)

	ve, ok := domain.AsValidationError(err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	assert.Contains(t, ve.Message, "@svsu.ac.in")
	assert.False(t, called, "collaborator must not be reached on validation failure")
}

func TestGenerate_MissingFields(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) { return "", nil })
	svc := newService(t, gen, false)

	tests := []struct {
		name   string
		mutate func(*domain.GenerationInput)
	}{
		{"empty email", func(in *domain.GenerationInput) { in.Email = "" }},
		{"empty issue", func(in *domain.GenerationInput) { in.IssueText = "  " }},
		{"empty department", func(in *domain.GenerationInput) { in.Department = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Generate(context.Background(), in)
			_, ok := domain.AsValidationError(err)
			assert.True(t, ok, "expected ValidationError, got %v", err)
		})
	}
}

func TestGenerate_CollaboratorError(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("connection refused")
	})

	svc := newService(t, gen, false)
	_, err := svc.Generate(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestGenerate_EmptyReply(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) { return "", nil })

	svc := newService(t, gen, false)
	_, err := svc.Generate(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestGenerate_TimeoutMapsToUnavailable(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, _ string) (string, error) {
		select {
		case <-time.After(5 * time.Second):
			return "too late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})

	b, err := prompt.NewBuilder(institution)
	require.NoError(t, err)
	p, err := parser.New()
	require.NoError(t, err)
	svc := New(gen, b, p,
		config.InstitutionConfig{Name: institution, EmailSuffix: "@svsu.ac.in"},
		config.GeneratorConfig{TimeoutSeconds: 1},
	)
	svc.timeout = 50 * time.Millisecond

	_, err = svc.Generate(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestGenerate_MalformedReply_Strict(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) {
		return "I could not help with that.", nil
	})

	svc := newService(t, gen, false)
	_, err := svc.Generate(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGenerate_MalformedReply_FallbackMode(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) {
		return "I could not help with that.", nil
	})

	svc := newService(t, gen, true)
	draft, err := svc.Generate(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "Application to the Library Department", draft.Subject)
	assert.Contains(t, draft.Body, institution)
	assert.Contains(t, draft.Body, "WiFi is down")
}
