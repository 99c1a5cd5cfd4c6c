package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"study-byte/internal/domain"
	"study-byte/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubService struct {
	domain.GenerationService
	count int
}

func (s *stubService) ProcessContent(ctx context.Context, text string, count int, params domain.GenerationParams) *domain.GeneratedContent {
	s.count = count
	return &domain.GeneratedContent{OriginalText: text, Summary: "summary of " + text}
}

type stubTx struct{ calls int }

func (s *stubTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calls++
	return fn(ctx)
}

type stubRepo struct {
	domain.ContentRepository
	saved []string
	fail  bool
}

func (r *stubRepo) Save(ctx context.Context, c *domain.GeneratedContent) error {
	if r.fail {
		return errors.New("db down")
	}
	r.saved = append(r.saved, c.OriginalText)
	return nil
}

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-in", "a.txt", "-count", "3", "-persist"})
	require.NoError(t, err)
	assert.Equal(t, options{in: "a.txt", out: "generated_content.json", count: 3, persist: true}, o)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "out.json", outputPath("out.json", "notes/a.txt", false))
	assert.Equal(t, filepath.Join("out", "a.json"), outputPath("out", "notes/a.txt", true))
}

func TestGenerate_WritesEveryInput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.txt"), []byte("first"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.txt"), []byte("second"), 0o644))

	files, err := inputs(filepath.Join(dir, "*.txt"))
	require.NoError(t, err)
	require.Len(t, files, 2)

	svc := &stubService{}
	outDir := filepath.Join(dir, "out")
	docs, err := generate(context.Background(), svc, options{out: outDir, count: 4}, files, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 4, svc.count)

	got, err := repository.ReadContentFile(filepath.Join(outDir, "two.json"))
	require.NoError(t, err)
	assert.Equal(t, "summary of second", got.Summary)
}

func TestInputs_NoMatch(t *testing.T) {
	_, err := inputs(filepath.Join(t.TempDir(), "*.md"))
	assert.ErrorContains(t, err, "no input files match")
}

func TestPersist(t *testing.T) {
	docs := []*domain.GeneratedContent{{OriginalText: "a"}, {OriginalText: "b"}}

	tx, repo := &stubTx{}, &stubRepo{}
	require.NoError(t, persist(context.Background(), tx, repo, docs))
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, []string{"a", "b"}, repo.saved)

	assert.ErrorContains(t, persist(context.Background(), &stubTx{}, &stubRepo{fail: true}, docs), "db down")
}
