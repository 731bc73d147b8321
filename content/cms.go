package content

import (
	"context"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

// CMSSource fetches collections from the headless CMS REST API. Every
// response is a {"data": [...]} envelope; single-record lookups filter
// by slug server-side and take the first element.
type CMSSource struct {
	caller types.HTTPCaller
	logger types.Logger
	token  string
}

type envelope struct {
	Data []map[string]interface{} `json:"data"`
}

func NewCMSSource(caller types.HTTPCaller, logger types.Logger, token string) *CMSSource {
	return &CMSSource{
		caller: caller,
		logger: logger,
		token:  token,
	}
}

func (s *CMSSource) List(ctx context.Context, collection string) ([]map[string]interface{}, error) {
	return s.fetch(ctx, "/api/"+collection)
}

func (s *CMSSource) FindBySlug(ctx context.Context, collection, slug string) (map[string]interface{}, error) {
	path := "/api/" + collection + "?slug=" + url.QueryEscape(slug)

	records, err := s.fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (s *CMSSource) fetch(ctx context.Context, path string) ([]map[string]interface{}, error) {
	opts := &types.CallOptions{}
	if s.token != "" {
		opts.Headers = map[string]string{"Authorization": "Bearer " + s.token}
	}
	if deadline, ok := ctx.Deadline(); ok {
		opts.Timeout = time.Until(deadline)
	}

	body, statusCode, err := s.caller.Call(fasthttp.MethodGet, path, nil, opts)
	if err != nil {
		return nil, types.Errorf(types.ErrUpstreamUnavailable, "%s: %v", path, err)
	}

	switch {
	case statusCode == fasthttp.StatusOK:
	case statusCode == fasthttp.StatusNotFound:
		return nil, nil
	case statusCode >= 500:
		return nil, types.Errorf(types.ErrUpstreamUnavailable, "%s: HTTP %d", path, statusCode)
	default:
		return nil, types.Errorf(types.ErrUpstreamBadPayload, "%s: HTTP %d", path, statusCode)
	}

	var wrapped envelope
	if err := utils.Unmarshal(body, &wrapped); err != nil {
		s.logger.Warn("CMS payload failed to decode",
			zap.String("path", path),
			zap.Error(err))
		return nil, types.Errorf(types.ErrUpstreamBadPayload, "%s: %v", path, err)
	}

	return wrapped.Data, nil
}
