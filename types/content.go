package types

import (
	"context"
	"time"
)

type LocalizedText struct {
	FR string `json:"fr"`
	EN string `json:"en"`
}

func (t LocalizedText) In(locale string) string {
	if locale == "en" && t.EN != "" {
		return t.EN
	}
	return t.FR
}

type Product struct {
	Slug           string        `json:"slug"`
	Name           LocalizedText `json:"name"`
	Description    LocalizedText `json:"description"`
	Category       string        `json:"category"`
	Origin         string        `json:"origin"`
	Image          string        `json:"image"`
	Certifications []string      `json:"certifications"`
	HarvestSeason  LocalizedText `json:"harvest_season"`
}

type Article struct {
	Slug        string        `json:"slug"`
	Title       LocalizedText `json:"title"`
	Excerpt     LocalizedText `json:"excerpt"`
	Body        LocalizedText `json:"body"`
	Cover       string        `json:"cover"`
	PublishedAt time.Time     `json:"published_at"`
}

type TeamMember struct {
	Name  string        `json:"name"`
	Role  LocalizedText `json:"role"`
	Photo string        `json:"photo"`
	Order int           `json:"order"`
}

// ContentSource is the raw CMS surface. FindBySlug returns (nil, nil) when no
// record matches; absence is not an error.
type ContentSource interface {
	List(ctx context.Context, collection string) ([]map[string]interface{}, error)
	FindBySlug(ctx context.Context, collection, slug string) (map[string]interface{}, error)
}

// ContentGateway feeds the page-rendering layer. The locale parameter exists
// for interface symmetry; the upstream returns all locales in one record, so
// it never changes network behavior.
type ContentGateway interface {
	ListProducts(ctx context.Context, locale string) ([]Product, error)
	GetProduct(ctx context.Context, slug, locale string) (*Product, error)
	ListProductSlugs(ctx context.Context) ([]string, error)
	ListArticles(ctx context.Context, locale string) ([]Article, error)
	GetArticle(ctx context.Context, slug, locale string) (*Article, error)
	ListArticleSlugs(ctx context.Context) ([]string, error)
	ListTeam(ctx context.Context, locale string) ([]TeamMember, error)
	Refresh(ctx context.Context) error
}
