package extractor

import (
	"html"
	"math/big"
	"net/url"
	"regexp"
	"strings"

	"propgen/domain/model"

	"github.com/PuerkitoBio/goquery"
)

const (
	FallbackTitle       = "No title available"
	FallbackDescription = "No description available"
	FallbackPrice       = "Price not available"
	FallbackAddress     = "Address not available"
	FallbackAgent       = "Not available"

	maxDescription = 500
	maxImages      = 10
	minPriceDigits = 5
)

var (
	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`),
		regexp.MustCompile(`(?is)<h[1-3][^>]*class="[^"]*title[^"]*"[^>]*>(.*?)</h[1-3]>`),
		regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`),
		regexp.MustCompile(`(?is)<[a-z0-9]+[^>]*(?:class|id|data-testid)="[^"]*listing[-_]?title[^"]*"[^>]*>(.*?)</[a-z0-9]+>`),
	}
	descriptionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<(?:div|p|section)[^>]*class="[^"]*description[^"]*"[^>]*>(.*?)</(?:div|p|section)>`),
		regexp.MustCompile(`(?is)<[a-z0-9]+[^>]*(?:id|data-testid)="[^"]*description[^"]*"[^>]*>(.*?)</[a-z0-9]+>`),
	}
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\$\s?([\d,]+)`),
		regexp.MustCompile(`(?is)class="[^"]*price[^"]*"[^>]*>[^<\d]*([\d,]+)`),
		regexp.MustCompile(`(?i)price[^\d<]{0,20}([\d,]+)`),
	}
	addressPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<[a-z0-9]+[^>]*class="[^"]*address[^"]*"[^>]*>(.*?)</[a-z0-9]+>`),
		regexp.MustCompile(`(?is)<[a-z0-9]+[^>]*itemprop="(?:address|streetAddress)"[^>]*>(.*?)</[a-z0-9]+>`),
		regexp.MustCompile(`(?is)<[a-z0-9]+[^>]*class="[^"]*location[^"]*"[^>]*>(.*?)</[a-z0-9]+>`),
	}
	agentNamePattern = regexp.MustCompile(`(?is)<[a-z0-9]+[^>]*class="[^"]*agent[-_]?name[^"]*"[^>]*>(.*?)</[a-z0-9]+>`)
	phonePattern     = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	emailPattern     = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	tagPattern        = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptPattern     = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(?:script|style|noscript)>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	nonPriceChars     = regexp.MustCompile(`[^\d,]`)
	nonDigits         = regexp.MustCompile(`\D`)
	excludedImage     = regexp.MustCompile(`(?i)logo|icon|thumb`)
)

// Parse extracts every field from raw HTML. It never fails: fields that do
// not match fall back to fixed literals.
func Parse(raw, pageURL string) *model.Listing {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(raw))
	return &model.Listing{
		Title:       firstMatch(raw, titlePatterns, FallbackTitle),
		Description: description(doc, raw),
		Price:       price(raw),
		Address:     firstMatch(raw, addressPatterns, FallbackAddress),
		Images:      images(doc, pageURL),
		Agent:       agent(raw),
	}
}

func firstMatch(raw string, patterns []*regexp.Regexp, fallback string) string {
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(raw, -1) {
			if text := cleanText(m[1]); text != "" {
				return text
			}
		}
	}
	return fallback
}

func description(doc *goquery.Document, raw string) string {
	text := ""
	if doc != nil {
		if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
			text = cleanText(content)
		}
		if text == "" {
			if content, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
				text = cleanText(content)
			}
		}
	}
	if text == "" {
		text = firstMatch(raw, descriptionPatterns, "")
	}
	if text == "" {
		return FallbackDescription
	}
	return truncate(text, maxDescription)
}

// price returns the numerically largest candidate with more than four digits
func price(raw string) string {
	var best string
	bestValue := new(big.Int)
	for _, p := range pricePatterns {
		for _, m := range p.FindAllStringSubmatch(raw, -1) {
			candidate := strings.Trim(nonPriceChars.ReplaceAllString(m[1], ""), ",")
			digits := nonDigits.ReplaceAllString(candidate, "")
			if len(digits) < minPriceDigits {
				continue
			}
			value, ok := new(big.Int).SetString(digits, 10)
			if !ok {
				continue
			}
			if best == "" || value.Cmp(bestValue) > 0 {
				best, bestValue = candidate, value
			}
		}
	}
	if best == "" {
		return FallbackPrice
	}
	return "$" + best
}

func images(doc *goquery.Document, pageURL string) []string {
	out := make([]string, 0, maxImages)
	if doc == nil {
		return out
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return out
	}
	seen := map[string]struct{}{}
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || excludedImage.MatchString(src) {
			return true
		}
		abs := resolveImage(base, src)
		if abs == "" {
			return true
		}
		if _, dup := seen[abs]; dup {
			return true
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
		return len(out) < maxImages
	})
	return out
}

// resolveImage handles protocol-relative and root-relative sources and keeps only absolute http(s) URLs
func resolveImage(base *url.URL, src string) string {
	switch {
	case strings.HasPrefix(src, "//"):
		scheme := base.Scheme
		if scheme == "" {
			scheme = "https"
		}
		src = scheme + ":" + src
	case strings.HasPrefix(src, "/"):
		if base.Host == "" {
			return ""
		}
		src = base.Scheme + "://" + base.Host + src
	}
	u, err := url.Parse(src)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}

func agent(raw string) *model.Agent {
	text := cleanText(scriptPattern.ReplaceAllString(raw, " "))
	a := &model.Agent{Name: FallbackAgent, Phone: FallbackAgent, Email: FallbackAgent}
	if m := agentNamePattern.FindStringSubmatch(raw); m != nil {
		if name := cleanText(m[1]); name != "" {
			a.Name = name
		}
	}
	if m := phonePattern.FindString(text); m != "" {
		a.Phone = strings.TrimSpace(m)
	}
	if m := emailPattern.FindString(text); m != "" {
		a.Email = m
	}
	return a
}

// cleanText strips tags, decodes entities and collapses whitespace
func cleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
