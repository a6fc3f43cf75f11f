package httpconfig

import (
	"net/url"
	"strings"

	"github.com/Unleash/unleash-proxy-client-go/internal/model"
)

// URLWithContextAsQuery returns a copy of base with every non-empty context field added as a query
// parameter. Properties are flattened as properties[name]=value. Query parameters already present in
// base are kept.
func URLWithContextAsQuery(base url.URL, ctx model.Context) url.URL {
	ret := base
	var b strings.Builder
	b.WriteString(base.RawQuery)
	add := func(name, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}
	for _, f := range ctx.Fields() {
		add(f[0], f[1])
	}
	for _, k := range ctx.SortedPropertyKeys() {
		add(model.FieldProperties+"["+k+"]", ctx.Properties[k])
	}
	ret.RawQuery = b.String()
	return ret
}

// FormatURL appends a path to the base URL's path, with exactly one slash between them.
func FormatURL(base url.URL, path string) url.URL {
	ret := base
	ret.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	ret.RawPath = ""
	return ret
}
