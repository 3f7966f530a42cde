package services

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zyncchat-api/utils"
)

func newTestSEO(client *http.Client) *SEOService {
	return NewSEOService(NewVendorClient("seo-audit", client, 5*time.Second), rand.New(rand.NewPCG(1, 2)))
}

func TestSEO_GenerateContent(t *testing.T) {
	seo := newTestSEO(nil)

	out := seo.GenerateContent("coffee", []string{"espresso", "latte"}, 1000, 8)
	paragraphs := strings.Split(out.Content, "\n\n")
	require.Len(t, paragraphs, 10)

	for _, p := range paragraphs {
		assert.True(t, strings.HasPrefix(p, "This paragraph is about coffee. "))
		assert.Contains(t, p, "It also discusses ")
	}
	assert.Contains(t, out.Content, "espresso")
	assert.Contains(t, out.Content, "latte")
	assert.Equal(t, "Learn all about coffee with tips, examples, and guidance including espresso, latte.", out.MetaDescription)
}

func TestSEO_GenerateContentDrainsKeywordPool(t *testing.T) {
	seo := newTestSEO(nil)

	// 1 keyword x 2 repetitions across 5 paragraphs
	out := seo.GenerateContent("tea", []string{"matcha"}, 450, 2)
	paragraphs := strings.Split(out.Content, "\n\n")
	require.Len(t, paragraphs, 5)
	assert.Equal(t, 2, strings.Count(out.Content, "It also discusses matcha."))
}

func TestSEO_OptimizeValidation(t *testing.T) {
	seo := newTestSEO(nil)

	_, _, err := seo.Optimize(context.Background(), "coffee", []string{" ", ""}, "")
	assertKind(t, err, utils.KindInvalidArgument, "Content and keywords are required")

	_, _, err = seo.Optimize(context.Background(), "", []string{"a"}, "")
	assertKind(t, err, utils.KindInvalidArgument, "Content and keywords are required")

	content, audit, err := seo.Optimize(context.Background(), "coffee", []string{"beans"}, "")
	require.NoError(t, err)
	assert.Nil(t, audit)
	assert.Len(t, strings.Split(content.Content, "\n\n"), DefaultSEOWords/100)
}

func TestSEO_Audit(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html><head><title> Brew Guide </title>
<meta name="description" content="All about brewing"></head>
<body><h1>Beans</h1><h1>Water</h1></body></html>`)
	})
	seo := newTestSEO(srv.Client())

	audit := seo.Audit(context.Background(), srv.URL)
	assert.Equal(t, "Brew Guide", audit.Title)
	assert.Equal(t, "All about brewing", audit.MetaDesc)
	assert.Equal(t, []string{"Beans", "Water"}, audit.H1Tags)
	assert.Empty(t, audit.Error)
}

func TestSEO_AuditDefaultsAndFailures(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `<html><body><p>bare</p></body></html>`)
	})
	seo := newTestSEO(srv.Client())

	audit := seo.Audit(context.Background(), srv.URL)
	assert.Equal(t, "No title", audit.Title)
	assert.Equal(t, "No meta description", audit.MetaDesc)
	assert.Empty(t, audit.H1Tags)
	out, err := json.Marshal(audit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"No title","metaDesc":"No meta description","h1Tags":[]}`, string(out))

	failed := seo.Audit(context.Background(), srv.URL+"/missing")
	assert.Equal(t, "Failed to fetch URL", failed.Error)
	out, err = json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Failed to fetch URL"}`, string(out))

	assert.Equal(t, "Failed to fetch URL", seo.Audit(context.Background(), "file:///etc/passwd").Error)
}
