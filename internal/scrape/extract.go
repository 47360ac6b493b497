package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Transcript view selectors. The activator is matched by visible label
// because the site gives its tabs no stable ids.
const (
	selActivator     = `button, [role="tab"], a`
	activatorPattern = `(?i)transcript`
	selContainer     = `[data-testid="transcript-container"]`
	selRowTime       = `[data-testid="transcript-timestamp"]`
	selRowText       = `[data-testid="transcript-text"]`
)

// ExtractTranscript reveals and reads the transcript on an already
// authenticated episode page. A missing activator, a container that never
// appears, or a container with no usable rows are all ErrContentUnavailable:
// the 404 case, not an internal failure.
func ExtractTranscript(page *rod.Page) (string, error) {
	pt := page.Timeout(activateTimeout)
	defer pt.CancelTimeout()
	tab, err := pt.ElementR(selActivator, activatorPattern)
	if err != nil {
		return "", fmt.Errorf("%w: no transcript control on page", ErrContentUnavailable)
	}
	if err := tab.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", fmt.Errorf("activate transcript view: %w", err)
	}

	pc := page.Timeout(activateTimeout)
	defer pc.CancelTimeout()
	container, err := pc.Element(selContainer)
	if err != nil {
		return "", fmt.Errorf("%w: transcript container never appeared", ErrContentUnavailable)
	}
	html, err := container.HTML()
	if err != nil {
		return "", fmt.Errorf("read transcript container: %w", err)
	}

	doc := parseTranscript(html)
	if doc == "" {
		metrics.EmptyTranscripts.Add(1)
		return "", fmt.Errorf("%w: no transcript rows survived", ErrContentUnavailable)
	}
	return doc, nil
}

// parseTranscript turns the container's HTML into the serialized transcript:
// timestamp and text joined by a newline, rows joined by a blank line.
// The container's first child is a structural header, not a row. Skipping
// it is an empirical fact about the site's markup and the most likely thing
// to break when the site ships a redesign.
func parseTranscript(html string) string {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	rows := root.Find(selContainer + " > *")
	if rows.Length() <= 1 {
		return ""
	}

	var b strings.Builder
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find(selRowTime).First().Text())
		text := strings.TrimSpace(row.Find(selRowText).First().Text())
		if label == "" || text == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(label)
		b.WriteByte('\n')
		b.WriteString(text)
	})
	return b.String()
}
