package scrape

import (
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is a pure document -> candidate-blocks function. Strategies
// are tried in order and the first one to yield at least one block wins,
// so the precise structural selector always beats the noisier heuristics.
type Strategy func(doc *goquery.Document) []*goquery.Selection

var strategies = []Strategy{matchCards, dateHeaderWalk, digitLinks}

// Locate returns candidate match blocks from a parsed vlr.gg listing.
// An empty result means no strategy matched anything; that is a valid
// "no matches found" outcome, not an error.
func Locate(doc *goquery.Document) []*goquery.Selection {
	for _, strategy := range strategies {
		if blocks := strategy(doc); len(blocks) > 0 {
			return blocks
		}
	}
	log.Println("[locator] no candidate blocks found; page structure may have changed")
	return nil
}

// matchCards targets the match-item cards vlr.gg renders on its results
// and schedule pages.
func matchCards(doc *goquery.Document) []*goquery.Selection {
	var blocks []*goquery.Selection
	doc.Find("a.wf-module-item").Each(func(i int, s *goquery.Selection) {
		blocks = append(blocks, s)
	})
	return blocks
}

// relativeAgo matches vlr.gg relative date headers like "2d ago".
var relativeAgo = regexp.MustCompile(`\d+\s*[hdw] ago$`)

func isRecencyHeader(text string) bool {
	return strings.HasSuffix(text, "Today") ||
		strings.HasSuffix(text, "Yesterday") ||
		relativeAgo.MatchString(text)
}

// dateHeaderWalk finds date-section headers ("Today", "Yesterday", or a
// relative phrase) and collects the sibling link nodes under each one,
// stopping at the next header or the end of the list.
func dateHeaderWalk(doc *goquery.Document) []*goquery.Selection {
	var headers []*goquery.Selection
	doc.Find("div").Each(func(i int, s *goquery.Selection) {
		if isRecencyHeader(strings.TrimSpace(s.Text())) {
			headers = append(headers, s)
		}
	})

	var blocks []*goquery.Selection
	for _, header := range headers {
		for sib := header.Next(); sib.Length() > 0; sib = sib.Next() {
			if isRecencyHeader(strings.TrimSpace(sib.Text())) {
				break
			}
			if goquery.NodeName(sib) == "a" {
				if href, ok := sib.Attr("href"); ok && strings.HasPrefix(href, "/") {
					blocks = append(blocks, sib)
				}
			}
		}
	}
	return blocks
}

// digitLinks is the last-resort scan: any link whose first path segment
// contains a digit looks like a match-ID URL.
func digitLinks(doc *goquery.Document) []*goquery.Selection {
	var blocks []*goquery.Selection
	doc.Find("a").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.HasPrefix(href, "/") {
			return
		}
		segments := strings.Split(strings.TrimPrefix(href, "/"), "/")
		if len(segments) == 0 {
			return
		}
		if containsDigit(segments[0]) {
			blocks = append(blocks, s)
		}
	})
	return blocks
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
