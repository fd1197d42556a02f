package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

type memArchive struct {
	objects map[string][]byte
	err     error
}

func (m *memArchive) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = body
	return "s3://bucket/" + key, nil
}

func (m *memArchive) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func TestAnalysisKey(t *testing.T) {
	created := time.Date(2026, 3, 4, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "analyses/u1/2026-03-04/a1.json", analysisKey(&domain.Analysis{ID: "a1", UserID: "u1", CreatedAt: created}))
	assert.Equal(t, "analyses/anonymous/0001-01-01/a2.json", analysisKey(&domain.Analysis{ID: "a2"}))
}

func TestArchiverStoresAnalysisJSON(t *testing.T) {
	store := &memArchive{}
	ar := &archiver{store: store}

	a := &domain.Analysis{ID: "a1", UserID: "u1", Narrative: domain.NarrativeResult{Text: "hi", Kind: domain.ReportBasic}}
	require.NoError(t, ar.handle(context.Background(), a))

	body, ok := store.objects["analyses/u1/0001-01-01/a1.json"]
	require.True(t, ok)
	var got domain.Analysis
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "hi", got.Narrative.Text)
}

func TestArchiverSkipsMissingID(t *testing.T) {
	store := &memArchive{}
	ar := &archiver{store: store}
	require.NoError(t, ar.handle(context.Background(), &domain.Analysis{}))
	assert.Empty(t, store.objects)
}

func TestArchiverReturnsStoreError(t *testing.T) {
	ar := &archiver{store: &memArchive{err: errors.New("denied")}}
	assert.Error(t, ar.handle(context.Background(), &domain.Analysis{ID: "a1"}))
}
