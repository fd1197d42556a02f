package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSections(t *testing.T) {
	in := strings.NewReader("preamble\n🌍 **LOCATION OVERVIEW**\nQuiet district.\n🚀 **TOP BUSINESS OPPORTUNITIES**\n- Bakery\n")
	var out bytes.Buffer

	require.NoError(t, runSections(in, &out, false))

	got := out.String()
	assert.Contains(t, got, "== 🌍 **LOCATION OVERVIEW** ==")
	assert.Contains(t, got, "Quiet district.")
	assert.Contains(t, got, "== 🚀 **TOP BUSINESS OPPORTUNITIES** ==")
	assert.NotContains(t, got, "preamble")
}

func TestRunSectionsPremiumMarker(t *testing.T) {
	text := "📋 **EXECUTIVE SUMMARY**\nStrong footfall.\n"

	var basic, premium bytes.Buffer
	require.NoError(t, runSections(strings.NewReader(text), &basic, false))
	require.NoError(t, runSections(strings.NewReader(text), &premium, true))

	assert.Empty(t, basic.String())
	assert.Contains(t, premium.String(), "== 📋 **EXECUTIVE SUMMARY** ==")
}

func TestAnalyzeRejectsInvalidRegion(t *testing.T) {
	err := runAnalyze(t.Context(), &bytes.Buffer{}, analyzeFlags{north: 1, south: 2, east: 3, west: 2})
	require.Error(t, err)
}

func TestAnalyzeCommandRequiresBounds(t *testing.T) {
	cmd := analyzeCmd()
	cmd.SetArgs([]string{"--north", "1"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
