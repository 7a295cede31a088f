package schema

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"

	igerrors "igcrawler/pkg/errors"
)

// sharedDataMarker prefixes the JSON blob embedded in server rendered pages
const sharedDataMarker = "window._sharedData"

var decoder = sonic.Config{UseNumber: true}.Froze()

// Decode turns a response body into a Document. JSON bodies are decoded
// directly; HTML pages are searched for the embedded window._sharedData
// blob. Anything else fails with MalformedResponse.
func Decode(body []byte) (Document, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, igerrors.MalformedResponse("empty body", nil)
	}
	if trimmed[0] == '<' {
		return decodeHTML(trimmed)
	}
	return decodeJSON(trimmed)
}

func decodeJSON(data []byte) (Document, error) {
	var doc map[string]any
	if err := decoder.Unmarshal(data, &doc); err != nil {
		return nil, igerrors.MalformedResponse("body is not a JSON object", err)
	}
	if doc == nil {
		return nil, igerrors.MalformedResponse("body is null", nil)
	}
	return Document(doc), nil
}

func decodeHTML(data []byte) (Document, error) {
	page, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, igerrors.MalformedResponse("body is not valid HTML", err)
	}

	var blob string
	page.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, sharedDataMarker) {
			return true
		}
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start >= 0 && end > start {
			blob = text[start : end+1]
		}
		return false
	})
	if blob == "" {
		return nil, igerrors.MalformedResponse("page carries no embedded data", nil)
	}

	shared, err := decodeJSON([]byte(blob))
	if err != nil {
		return nil, err
	}
	return unwrapEntryData(shared), nil
}

// unwrapEntryData returns the first page payload of entry_data, e.g.
// entry_data.PostPage[0], which has the same shape as the ?__a=1 body.
func unwrapEntryData(shared Document) Document {
	entries := object(map[string]any(shared), "entry_data")
	for _, page := range []string{"PostPage", "ProfilePage", "TagPage", "LocationsPage"} {
		pages := array(entries, page)
		if len(pages) == 0 {
			continue
		}
		if payload, ok := pages[0].(map[string]any); ok {
			return Document(payload)
		}
	}
	return shared
}
