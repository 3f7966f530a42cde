package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"zyncchat-api/utils"
)

const (
	DefaultSEOWords            = 1000
	DefaultSEOKeywordFrequency = 8
	seoWordsPerParagraph       = 100
)

// SEOContent is a generated article draft.
type SEOContent struct {
	Content         string
	MetaDescription string
}

// SEOAudit summarises a fetched page. Error is set instead of the other
// fields when the page could not be fetched.
type SEOAudit struct {
	Title    string   `json:"title,omitempty"`
	MetaDesc string   `json:"metaDesc,omitempty"`
	H1Tags   []string `json:"h1Tags"`
	Error    string   `json:"error,omitempty"`
}

func (a SEOAudit) MarshalJSON() ([]byte, error) {
	if a.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{a.Error})
	}
	type plain SEOAudit
	p := plain(a)
	if p.H1Tags == nil {
		p.H1Tags = []string{}
	}
	return json.Marshal(p)
}

type SEOService struct {
	fetcher *VendorClient

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSEOService(fetcher *VendorClient, rng *rand.Rand) *SEOService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &SEOService{fetcher: fetcher, rng: rng}
}

// GenerateContent assembles a template article of roughly totalWords words in
// which each keyword appears keywordFrequency times, budget permitting.
func (s *SEOService) GenerateContent(topic string, keywords []string, totalWords, keywordFrequency int) SEOContent {
	meta := fmt.Sprintf("Learn all about %s with tips, examples, and guidance including %s.", topic, strings.Join(keywords, ", "))

	numParagraphs := (totalWords + seoWordsPerParagraph - 1) / seoWordsPerParagraph

	pool := make([]string, 0, len(keywords)*keywordFrequency)
	for _, kw := range keywords {
		for i := 0; i < keywordFrequency; i++ {
			pool = append(pool, kw)
		}
	}

	paragraphs := make([]string, 0, numParagraphs)
	for i := 0; i < numParagraphs; i++ {
		var b strings.Builder
		fmt.Fprintf(&b, "This paragraph is about %s. ", topic)
		if len(pool) > 0 {
			idx := s.intN(len(pool))
			fmt.Fprintf(&b, "It also discusses %s. ", pool[idx])
			pool = append(pool[:idx], pool[idx+1:]...)
		}
		fmt.Fprintf(&b, "Here we provide detailed insights, examples, and guidance about %s to help the reader understand the topic deeply. ", topic)
		fmt.Fprintf(&b, "This paragraph contains useful tips, tricks, and information that is relevant to %s. ", topic)
		paragraphs = append(paragraphs, b.String())
	}

	return SEOContent{
		Content:         strings.Join(paragraphs, "\n\n"),
		MetaDescription: meta,
	}
}

func (s *SEOService) intN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Audit fetches rawURL and extracts its title, meta description and h1 headings.
func (s *SEOService) Audit(ctx context.Context, rawURL string) *SEOAudit {
	failed := &SEOAudit{Error: "Failed to fetch URL"}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return failed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return failed
	}
	req.Header.Set("User-Agent", "ZyncChat-SEO-Audit/1.0")

	body, _, err := s.fetcher.Do(ctx, req)
	if err != nil {
		return failed
	}

	audit, err := parseAudit(body)
	if err != nil {
		return failed
	}
	return audit
}

func parseAudit(page []byte) (*SEOAudit, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	audit := &SEOAudit{H1Tags: []string{}}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if audit.Title == "" {
					audit.Title = strings.TrimSpace(textContent(n))
				}
			case atom.Meta:
				if strings.EqualFold(attr(n, "name"), "description") && audit.MetaDesc == "" {
					audit.MetaDesc = attr(n, "content")
				}
			case atom.H1:
				audit.H1Tags = append(audit.H1Tags, strings.TrimSpace(textContent(n)))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if audit.Title == "" {
		audit.Title = "No title"
	}
	if audit.MetaDesc == "" {
		audit.MetaDesc = "No meta description"
	}
	return audit, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Optimize validates a request and runs generation plus the optional audit.
func (s *SEOService) Optimize(ctx context.Context, topic string, keywords []string, auditURL string) (SEOContent, *SEOAudit, error) {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	if utils.IsBlank(topic) || len(cleaned) == 0 {
		return SEOContent{}, nil, utils.InvalidArgument("Content and keywords are required")
	}

	content := s.GenerateContent(strings.TrimSpace(topic), cleaned, DefaultSEOWords, DefaultSEOKeywordFrequency)

	var audit *SEOAudit
	if strings.TrimSpace(auditURL) != "" {
		audit = s.Audit(ctx, strings.TrimSpace(auditURL))
	}
	return content, audit, nil
}
