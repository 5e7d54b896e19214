// Package extract evaluates path expressions against response bodies to
// pull out values for variable capture
package extract

import (
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/tidwall/gjson"
	"github.com/volleyhq/volley/internal/util"
)

var (
	// bracketIndex rewrites JSONPath-style array indexes ([0]) into the
	// dotted form gjson expects (.0)
	bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

	// xpathCache retains compiled XPath expressions keyed by their source
	// text. The same extraction rules repeat on every run of a flow
	xpathCache = util.NewLRUCache[*xpath.Expr](256)
)

// Value applies a path expression to a response body and returns the
// extracted value. Content types mentioning XML are queried with XPath;
// everything else, including an unknown content type, is treated as JSON.
// An unparseable body, an invalid path, an unmatched path, and an explicit
// JSON null all report a miss rather than an error
func Value(body, path, contentType string) (string, bool) {
	if body == "" || path == "" {
		return "", false
	}
	if strings.Contains(strings.ToLower(contentType), "xml") {
		return xmlValue(body, path)
	}
	return jsonValue(body, path)
}

func jsonValue(body, path string) (string, bool) {
	res := gjson.Get(body, normalizeJSONPath(path))
	if !res.Exists() || res.Type == gjson.Null {
		return "", false
	}
	return res.String(), true
}

// normalizeJSONPath accepts the common JSONPath spellings ($.users[0].name)
// alongside plain gjson paths (users.0.name)
func normalizeJSONPath(path string) string {
	res := strings.TrimSpace(path)
	res = strings.TrimPrefix(res, "$")
	res = bracketIndex.ReplaceAllString(res, ".$1")
	return strings.TrimPrefix(res, ".")
}

func xmlValue(body, path string) (string, bool) {
	expr, err := xpathCache.Get(path, func() (*xpath.Expr, error) {
		return xpath.Compile(path)
	})
	if err != nil {
		return "", false
	}
	doc, err := xmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}
	node := xmlquery.QuerySelector(doc, expr)
	if node == nil {
		return "", false
	}
	return strings.TrimSpace(node.InnerText()), true
}
