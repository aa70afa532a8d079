package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ProductQuery is the filter set accepted by GET /products. Zero values are omitted.
type ProductQuery struct {
	Category  string
	Search    string
	Sort      string
	Order     string
	MinPrice  *int
	MaxPrice  *int
	Sizes     []string
	Colors    []string
	Materials []string
	Occasions []string
	AgeRanges []string
	Featured  *bool
	InStock   *bool
	Page      int
	Limit     int
}

// Values encodes the query the way the API reads it: category travels as
// categoryName and slices repeat their key.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("categoryName", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.Itoa(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.Itoa(*q.MaxPrice))
	}
	for key, list := range map[string][]string{
		"sizes":     q.Sizes,
		"colors":    q.Colors,
		"materials": q.Materials,
		"occasions": q.Occasions,
		"ageRanges": q.AgeRanges,
	} {
		for _, s := range list {
			v.Add(key, s)
		}
	}
	if q.Featured != nil {
		v.Set("featured", strconv.FormatBool(*q.Featured))
	}
	if q.InStock != nil {
		v.Set("inStock", strconv.FormatBool(*q.InStock))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

type CatalogClient struct{ c *Client }

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

func (cc *CatalogClient) ListProducts(ctx context.Context, q ProductQuery) (ProductPage, error) {
	var out ProductPage
	err := cc.c.doJSON(ctx, http.MethodGet, "/products", q.Values(), nil, &out)
	return out, err
}

func (cc *CatalogClient) GetProduct(ctx context.Context, id string) (Product, error) {
	var out Product
	err := cc.c.doJSON(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (cc *CatalogClient) RelatedProducts(ctx context.Context, id string) ([]Product, error) {
	var out struct {
		Products []Product `json:"products"`
	}
	err := cc.c.doJSON(ctx, http.MethodGet, "/products/"+url.PathEscape(id)+"/related", nil, nil, &out)
	return out.Products, err
}

func (cc *CatalogClient) ListCategories(ctx context.Context) ([]Category, error) {
	var out struct {
		Categories []Category `json:"categories"`
	}
	err := cc.c.doJSON(ctx, http.MethodGet, "/categories", nil, nil, &out)
	return out.Categories, err
}

func (cc *CatalogClient) GetCategory(ctx context.Context, slug string) (Category, error) {
	var out Category
	err := cc.c.doJSON(ctx, http.MethodGet, "/categories/"+url.PathEscape(slug), nil, nil, &out)
	return out, err
}

func (cc *CatalogClient) Homepage(ctx context.Context) (Homepage, error) {
	var out Homepage
	err := cc.c.doJSON(ctx, http.MethodGet, "/homepage", nil, nil, &out)
	return out, err
}

func (cc *CatalogClient) TopPicks(ctx context.Context) ([]TopPick, error) {
	var out struct {
		TopPicks []TopPick `json:"topPicks"`
	}
	err := cc.c.doJSON(ctx, http.MethodGet, "/homepage/top-picks", nil, nil, &out)
	return out.TopPicks, err
}

// Testimonials lists testimonials; limit 0 and a nil featured leave the filters off.
func (cc *CatalogClient) Testimonials(ctx context.Context, limit int, featured *bool) ([]Testimonial, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if featured != nil {
		q.Set("featured", strconv.FormatBool(*featured))
	}
	var out struct {
		Testimonials []Testimonial `json:"testimonials"`
	}
	err := cc.c.doJSON(ctx, http.MethodGet, "/homepage/testimonials", q, nil, &out)
	return out.Testimonials, err
}

func (cc *CatalogClient) Stats(ctx context.Context) (BusinessStats, error) {
	var out struct {
		Stats BusinessStats `json:"stats"`
	}
	err := cc.c.doJSON(ctx, http.MethodGet, "/homepage/stats", nil, nil, &out)
	return out.Stats, err
}

func (cc *CatalogClient) Banners(ctx context.Context) ([]Banner, error) {
	var out struct {
		Banners []Banner `json:"banners"`
	}
	err := cc.c.doJSON(ctx, http.MethodGet, "/banners", nil, nil, &out)
	return out.Banners, err
}
