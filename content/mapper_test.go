package content

import (
	"testing"
	"time"
)

func TestMapProduct_FlattensLocaleSuffixes(t *testing.T) {
	record := map[string]interface{}{
		"slug":              "cacao-forastero",
		"name_fr":           "Cacao Forastero",
		"name_en":           "Forastero Cocoa",
		"description_fr":    "Fèves de cacao séchées au soleil.",
		"description_en":    "Sun-dried cocoa beans.",
		"category":          "cocoa",
		"origin":            "Côte d'Ivoire",
		"image":             "/media/cacao.jpg",
		"certifications":    []interface{}{"bio", "fairtrade"},
		"harvest_season_fr": "Octobre à mars",
		"harvest_season_en": "October to March",
	}

	product := mapProduct(record)

	if product.Slug != "cacao-forastero" {
		t.Errorf("slug = %q", product.Slug)
	}
	if product.Name.FR != "Cacao Forastero" || product.Name.EN != "Forastero Cocoa" {
		t.Errorf("name = %+v", product.Name)
	}
	if product.Description.EN != "Sun-dried cocoa beans." {
		t.Errorf("description = %+v", product.Description)
	}
	if len(product.Certifications) != 2 || product.Certifications[0] != "bio" {
		t.Errorf("certifications = %v", product.Certifications)
	}
	if product.HarvestSeason.FR != "Octobre à mars" {
		t.Errorf("harvest season = %+v", product.HarvestSeason)
	}
}

func TestMapProduct_AbsentFieldsDefault(t *testing.T) {
	product := mapProduct(map[string]interface{}{"slug": "mangue"})

	if product.Name.FR != "" || product.Name.EN != "" {
		t.Errorf("expected empty localized name, got %+v", product.Name)
	}
	if product.Certifications != nil {
		t.Errorf("expected nil certifications, got %v", product.Certifications)
	}
}

func TestMapArticle(t *testing.T) {
	record := map[string]interface{}{
		"slug":         "campagne-2025",
		"title_fr":     "Campagne cacao 2025",
		"title_en":     "2025 cocoa campaign",
		"published_at": "2025-03-15T09:30:00Z",
	}

	article := mapArticle(record)

	if article.Title.EN != "2025 cocoa campaign" {
		t.Errorf("title = %+v", article.Title)
	}
	want := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)
	if !article.PublishedAt.Equal(want) {
		t.Errorf("published_at = %v, want %v", article.PublishedAt, want)
	}
}

func TestMapArticle_BadTimestampDefaults(t *testing.T) {
	article := mapArticle(map[string]interface{}{
		"slug":         "x",
		"published_at": "not-a-date",
	})
	if !article.PublishedAt.IsZero() {
		t.Errorf("expected zero time, got %v", article.PublishedAt)
	}
}

func TestMapTeamMember_OrderCoercion(t *testing.T) {
	member := mapTeamMember(map[string]interface{}{
		"name":    "Aïcha Koné",
		"role_fr": "Directrice export",
		"role_en": "Export director",
		"order":   float64(2),
	})

	if member.Order != 2 {
		t.Errorf("order = %d, want 2", member.Order)
	}
	if member.Role.In("en") != "Export director" {
		t.Errorf("role = %+v", member.Role)
	}
	if member.Role.In("fr") != "Directrice export" {
		t.Errorf("role = %+v", member.Role)
	}
}

func TestLocalizedText_FallsBackToFrench(t *testing.T) {
	text := mapProduct(map[string]interface{}{"name_fr": "Anacarde"}).Name
	if text.In("en") != "Anacarde" {
		t.Errorf("expected fr fallback, got %q", text.In("en"))
	}
}
