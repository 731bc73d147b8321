package content

import (
	"time"

	"github.com/agrosud-co/site-service/types"
)

// The CMS stores every translated field as a locale-suffixed pair
// (name_fr / name_en). Mapping flattens those into LocalizedText and
// normalizes absent optional fields to zero values so the rendering
// layer never branches on nil.

func mapProduct(record map[string]interface{}) types.Product {
	return types.Product{
		Slug:           stringField(record, "slug"),
		Name:           localizedField(record, "name"),
		Description:    localizedField(record, "description"),
		Category:       stringField(record, "category"),
		Origin:         stringField(record, "origin"),
		Image:          stringField(record, "image"),
		Certifications: stringSliceField(record, "certifications"),
		HarvestSeason:  localizedField(record, "harvest_season"),
	}
}

func mapArticle(record map[string]interface{}) types.Article {
	return types.Article{
		Slug:        stringField(record, "slug"),
		Title:       localizedField(record, "title"),
		Excerpt:     localizedField(record, "excerpt"),
		Body:        localizedField(record, "body"),
		Cover:       stringField(record, "cover"),
		PublishedAt: timeField(record, "published_at"),
	}
}

func mapTeamMember(record map[string]interface{}) types.TeamMember {
	return types.TeamMember{
		Name:  stringField(record, "name"),
		Role:  localizedField(record, "role"),
		Photo: stringField(record, "photo"),
		Order: intField(record, "order"),
	}
}

func localizedField(record map[string]interface{}, field string) types.LocalizedText {
	return types.LocalizedText{
		FR: stringField(record, field+"_fr"),
		EN: stringField(record, field+"_en"),
	}
}

func stringField(record map[string]interface{}, field string) string {
	if value, ok := record[field].(string); ok {
		return value
	}
	return ""
}

func stringSliceField(record map[string]interface{}, field string) []string {
	raw, ok := record[field].([]interface{})
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if value, ok := item.(string); ok {
			values = append(values, value)
		}
	}
	return values
}

func intField(record map[string]interface{}, field string) int {
	switch value := record[field].(type) {
	case float64:
		return int(value)
	case int64:
		return int(value)
	case int:
		return value
	default:
		return 0
	}
}

func timeField(record map[string]interface{}, field string) time.Time {
	raw, ok := record[field].(string)
	if !ok {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
