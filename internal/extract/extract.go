// Package extract pulls contact fields out of raw page HTML with regex and
// keyword heuristics. Every field is best-effort: the contract is "first
// plausible match", not "correct value".
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadscout/internal/model"
)

var (
	emailRe  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	nameRe   = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+)\b`)
	phoneRe  = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	scriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// Keywords that flag a sentence as likely naming the person in charge.
var ownerKeywords = []string{"owner", "ceo", "founder", "manager", "president", "director"}

// EmailFilter rejects candidates that should be treated as absent.
type EmailFilter interface {
	IsPlaceholderEmail(email string) bool
}

// Extractor scans fetched page text for an email, an owner name and a phone
// number. Fields are independent; any of them may come back empty.
type Extractor struct {
	filter EmailFilter
}

func New(filter EmailFilter) *Extractor {
	return &Extractor{filter: filter}
}

// Extract runs all three heuristics over the raw HTML of one or more
// concatenated pages.
func (x *Extractor) Extract(raw string) model.ExtractionResult {
	if strings.TrimSpace(raw) == "" {
		return model.ExtractionResult{}
	}
	text := Flatten(raw)
	return model.ExtractionResult{
		Email:     x.email(raw),
		OwnerName: ownerName(text),
		Phone:     phone(raw, text),
	}
}

// Flatten strips markup and collapses whitespace. Tags become spaces so
// words in adjacent elements don't run together.
func Flatten(raw string) string {
	t := scriptRe.ReplaceAllString(raw, " ")
	t = tagRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(t, " "))
}

// email returns the first candidate that survives the placeholder filter.
func (x *Extractor) email(raw string) string {
	for _, e := range emailRe.FindAllString(raw, -1) {
		if x.filter == nil || !x.filter.IsPlaceholderEmail(e) {
			return e
		}
	}
	return ""
}

// ownerName splits the text into sentence-like segments, finds the first one
// mentioning a leadership keyword and takes the first Two Capitalized Words
// inside it. Naive on purpose; false positives are accepted.
func ownerName(text string) string {
	for _, segment := range strings.Split(text, ".") {
		lower := strings.ToLower(segment)
		matched := false
		for _, kw := range ownerKeywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if m := nameRe.FindStringSubmatch(segment); m != nil {
			return m[1]
		}
		return ""
	}
	return ""
}

// phone prefers an explicit tel: anchor target over a freeform text match.
func phone(raw, text string) string {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
		found := ""
		doc.Find(`a[href]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			href = strings.TrimSpace(href)
			if strings.HasPrefix(strings.ToLower(href), "tel:") {
				if n := strings.TrimSpace(href[4:]); n != "" {
					found = n
					return false
				}
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return phoneRe.FindString(text)
}
