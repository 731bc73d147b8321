package content

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
)

const (
	keyProducts     = "products"
	keyProductSlugs = "product-slugs"
	keyArticles     = "articles"
	keyArticleSlugs = "article-slugs"
	keyTeam         = "team"

	collectionProducts = "products"
	collectionArticles = "articles"
	collectionTeam     = "team-members"
)

// Gateway is the cached content surface for the page handlers. Each
// accessor computes a deterministic cache key and a loader closure; the
// cache decides whether the loader actually runs.
type Gateway struct {
	source types.ContentSource
	cache  types.ContentCache
	logger types.Logger
}

func NewGateway(source types.ContentSource, cache types.ContentCache, logger types.Logger) *Gateway {
	return &Gateway{
		source: source,
		cache:  cache,
		logger: logger,
	}
}

func (g *Gateway) ListProducts(ctx context.Context, locale string) ([]types.Product, error) {
	value, err := g.cache.GetOrLoad(ctx, keyProducts, func(ctx context.Context) (interface{}, error) {
		records, err := g.source.List(ctx, collectionProducts)
		if err != nil {
			return nil, err
		}
		products := make([]types.Product, 0, len(records))
		for _, record := range records {
			products = append(products, mapProduct(record))
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]types.Product), nil
}

func (g *Gateway) GetProduct(ctx context.Context, slug, locale string) (*types.Product, error) {
	value, err := g.cache.GetOrLoad(ctx, "product:"+slug, func(ctx context.Context) (interface{}, error) {
		record, err := g.source.FindBySlug(ctx, collectionProducts, slug)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return (*types.Product)(nil), nil
		}
		product := mapProduct(record)
		return &product, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*types.Product), nil
}

func (g *Gateway) ListProductSlugs(ctx context.Context) ([]string, error) {
	value, err := g.cache.GetOrLoad(ctx, keyProductSlugs, func(ctx context.Context) (interface{}, error) {
		return g.loadSlugs(ctx, collectionProducts)
	})
	if err != nil {
		return nil, err
	}
	return value.([]string), nil
}

func (g *Gateway) ListArticles(ctx context.Context, locale string) ([]types.Article, error) {
	value, err := g.cache.GetOrLoad(ctx, keyArticles, func(ctx context.Context) (interface{}, error) {
		records, err := g.source.List(ctx, collectionArticles)
		if err != nil {
			return nil, err
		}
		articles := make([]types.Article, 0, len(records))
		for _, record := range records {
			articles = append(articles, mapArticle(record))
		}
		sort.Slice(articles, func(i, j int) bool {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		})
		return articles, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]types.Article), nil
}

func (g *Gateway) GetArticle(ctx context.Context, slug, locale string) (*types.Article, error) {
	value, err := g.cache.GetOrLoad(ctx, "article:"+slug, func(ctx context.Context) (interface{}, error) {
		record, err := g.source.FindBySlug(ctx, collectionArticles, slug)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return (*types.Article)(nil), nil
		}
		article := mapArticle(record)
		return &article, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*types.Article), nil
}

func (g *Gateway) ListArticleSlugs(ctx context.Context) ([]string, error) {
	value, err := g.cache.GetOrLoad(ctx, keyArticleSlugs, func(ctx context.Context) (interface{}, error) {
		return g.loadSlugs(ctx, collectionArticles)
	})
	if err != nil {
		return nil, err
	}
	return value.([]string), nil
}

func (g *Gateway) ListTeam(ctx context.Context, locale string) ([]types.TeamMember, error) {
	value, err := g.cache.GetOrLoad(ctx, keyTeam, func(ctx context.Context) (interface{}, error) {
		records, err := g.source.List(ctx, collectionTeam)
		if err != nil {
			return nil, err
		}
		members := make([]types.TeamMember, 0, len(records))
		for _, record := range records {
			members = append(members, mapTeamMember(record))
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].Order < members[j].Order
		})
		return members, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]types.TeamMember), nil
}

// Refresh warms the list keys. Errors are logged and the remaining keys
// still refresh; a cron pass must not abort on the first upstream
// hiccup.
func (g *Gateway) Refresh(ctx context.Context) error {
	var lastErr error

	warmers := []struct {
		name string
		load func() error
	}{
		{keyProducts, func() error { _, err := g.ListProducts(ctx, "fr"); return err }},
		{keyProductSlugs, func() error { _, err := g.ListProductSlugs(ctx); return err }},
		{keyArticles, func() error { _, err := g.ListArticles(ctx, "fr"); return err }},
		{keyArticleSlugs, func() error { _, err := g.ListArticleSlugs(ctx); return err }},
		{keyTeam, func() error { _, err := g.ListTeam(ctx, "fr"); return err }},
	}

	for _, warmer := range warmers {
		if err := warmer.load(); err != nil {
			g.logger.Warn("Content refresh failed for key",
				zap.String("key", warmer.name),
				zap.Error(err))
			lastErr = err
		}
	}

	return lastErr
}

func (g *Gateway) loadSlugs(ctx context.Context, collection string) ([]string, error) {
	records, err := g.source.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(records))
	for _, record := range records {
		if slug := stringField(record, "slug"); slug != "" {
			slugs = append(slugs, slug)
		}
	}
	return slugs, nil
}
