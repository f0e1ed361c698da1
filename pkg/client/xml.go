package client

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// xmlText returns the trimmed text of the first node matching expr.
func xmlText(body []byte, expr string) (string, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: parsing XML: %v", ErrMalformedResponse, err)
	}
	return nodeText(doc, expr)
}

func nodeText(doc *xmlquery.Node, expr string) (string, error) {
	node, err := xmlquery.Query(doc, expr)
	if err != nil {
		return "", fmt.Errorf("invalid XPath expression %q: %w", expr, err)
	}
	if node == nil {
		return "", fmt.Errorf("%w: no element matches %s", ErrMalformedResponse, expr)
	}
	text := strings.TrimSpace(node.InnerText())
	if text == "" {
		return "", fmt.Errorf("%w: element %s is empty", ErrMalformedResponse, expr)
	}
	return text, nil
}

// dictKey selects an s:key entry of a job's s:dict content by name,
// independent of the namespace prefix the server uses.
func dictKey(name string) string {
	return fmt.Sprintf("//*[local-name()='key'][@name='%s']", name)
}
