package limiter

import (
	"time"

	"github.com/agrosud-co/site-service/types"
)

const keyPrefix = "rl"

// Classes holds the fixed per-route-class limits. Built once from
// configuration at startup; never mutated afterwards.
type Classes struct {
	byName map[string]types.RouteClass
}

func NewClasses(config map[string]types.RouteClassConfig) *Classes {
	byName := make(map[string]types.RouteClass, len(config))
	for name, item := range config {
		byName[name] = types.RouteClass{
			Name:   name,
			Prefix: keyPrefix + ":" + name,
			Limit:  item.Limit,
			Window: time.Duration(item.WindowSeconds) * time.Second,
		}
	}
	return &Classes{byName: byName}
}

func (c *Classes) Get(name string) (types.RouteClass, error) {
	class, ok := c.byName[name]
	if !ok {
		return types.RouteClass{}, types.Errorf(types.ErrRouteClassUnknown, "%s", name)
	}
	return class, nil
}
