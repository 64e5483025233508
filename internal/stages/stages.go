// Package stages holds the immutable stage catalog that drives the strategy
// wizard, plus the resolvers for cross-stage dynamic options and for
// bucketing repeating-group items.
package stages

import (
	"fmt"
	"strings"

	"github.com/BeatGrid/StrategyPipe/internal/models"
)

// UnassignedBucket is the synthetic bucket name for grouped items whose
// assignment matches no known bucket.
const UnassignedBucket = "Unassigned"

var byID map[string]*models.StageConfig

func init() {
	byID = make(map[string]*models.StageConfig, len(templates))
	for i := range templates {
		c := &templates[i]
		if err := c.Validate(); err != nil {
			panic(fmt.Sprintf("stages: invalid template %q: %v", c.ID, err))
		}
		if _, dup := byID[c.ID]; dup {
			panic(fmt.Sprintf("stages: duplicate template id %q", c.ID))
		}
		byID[c.ID] = c
	}
}

// All returns every stage in wizard order.
func All() []models.StageConfig {
	return templates
}

// Get looks up one stage by id.
func Get(id string) (*models.StageConfig, bool) {
	c, ok := byID[id]
	return c, ok
}

// Next returns the stage that follows id in wizard order, or false when id
// is the last stage or unknown.
func Next(id string) (*models.StageConfig, bool) {
	for i := range templates {
		if templates[i].ID == id && i+1 < len(templates) {
			return &templates[i+1], true
		}
	}
	return nil, false
}

// SplitSourcePath splits a dotted "stage-id.field-id" reference.
func SplitSourcePath(src string) (stageID, fieldID string, ok bool) {
	parts := strings.SplitN(src, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ResolveSource resolves a dotted source path against saved strategy data
// and returns the referenced items' "name" attributes, or the raw string
// list when the field holds plain strings. Paths may also name a step id,
// in which case the step's first array field is used; "stage-5.campaigns"
// reaches the campaign_list field this way.
func ResolveSource(strategies map[string]models.StrategyRecord, src string) []string {
	stageID, fieldID, ok := SplitSourcePath(src)
	if !ok {
		return nil
	}
	rec, ok := strategies[stageID]
	if !ok || rec.Data == nil {
		return nil
	}
	raw, ok := rec.Data[fieldID]
	if !ok {
		raw = resolveStepAlias(rec, stageID, fieldID)
	}
	if raw == nil {
		return nil
	}
	if plain := models.AsStringSlice(raw); len(plain) > 0 {
		return plain
	}
	var names []string
	for _, item := range models.AsItems(raw) {
		if name := models.AsString(item["name"]); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// resolveStepAlias maps a step id to its first array field's value.
func resolveStepAlias(rec models.StrategyRecord, stageID, stepID string) any {
	cfg, ok := Get(stageID)
	if !ok {
		return nil
	}
	for i := range cfg.Steps {
		if cfg.Steps[i].ID != stepID {
			continue
		}
		for j := range cfg.Steps[i].Fields {
			if cfg.Steps[i].Fields[j].Type == models.FieldTypeArray {
				return rec.Data[cfg.Steps[i].Fields[j].ID]
			}
		}
	}
	return nil
}

// GroupItems partitions repeating-group items into named buckets by their
// campaign_assignment values, appending an Unassigned bucket for items
// whose assignment matches no bucket. Bucket order follows bucketNames; an
// item assigned to several buckets appears in each.
func GroupItems(items []map[string]any, bucketNames []string) map[string][]map[string]any {
	out := make(map[string][]map[string]any, len(bucketNames)+1)
	for _, name := range bucketNames {
		out[name] = []map[string]any{}
	}
	out[UnassignedBucket] = []map[string]any{}
	for _, item := range items {
		assigned := false
		for _, target := range models.AsStringSlice(item["campaign_assignment"]) {
			if _, known := out[target]; known && target != UnassignedBucket {
				out[target] = append(out[target], item)
				assigned = true
			}
		}
		if !assigned {
			out[UnassignedBucket] = append(out[UnassignedBucket], item)
		}
	}
	return out
}
