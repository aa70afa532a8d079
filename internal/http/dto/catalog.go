package dto

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/aniayu/storefront-go/internal/clients"
)

// ParseProductQuery reads product filters from the storefront's query string.
// List filters may repeat the key or use commas.
func ParseProductQuery(v url.Values) clients.ProductQuery {
	q := clients.ProductQuery{
		Category:  strings.TrimSpace(v.Get("category")),
		Search:    strings.TrimSpace(v.Get("search")),
		Sort:      v.Get("sort"),
		Order:     v.Get("order"),
		MinPrice:  intParam(v, "minPrice"),
		MaxPrice:  intParam(v, "maxPrice"),
		Sizes:     listParam(v, "sizes"),
		Colors:    listParam(v, "colors"),
		Materials: listParam(v, "materials"),
		Occasions: listParam(v, "occasions"),
		AgeRanges: listParam(v, "ageRanges"),
		Featured:  boolParam(v, "featured"),
		InStock:   boolParam(v, "inStock"),
	}
	if p := intParam(v, "page"); p != nil {
		q.Page = *p
	}
	if l := intParam(v, "limit"); l != nil {
		q.Limit = *l
	}
	return q
}

func intParam(v url.Values, key string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(v.Get(key)))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func boolParam(v url.Values, key string) *bool {
	b, err := strconv.ParseBool(v.Get(key))
	if err != nil {
		return nil
	}
	return &b
}

func listParam(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
