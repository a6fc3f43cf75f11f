package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Unleash/unleash-proxy-client-go/internal/httpconfig"
	"github.com/Unleash/unleash-proxy-client-go/internal/model"
	"github.com/Unleash/unleash-proxy-client-go/internal/util"
)

type contextBody struct {
	Context model.Context `json:"context"`
}

func (e *Engine) makeRequest(ctx context.Context, c model.Context, etag string) (*http.Request, error) {
	var (
		target = e.params.URL
		body   io.Reader
		method = http.MethodGet
	)
	if e.params.UsePOSTRequests {
		data, err := json.Marshal(contextBody{Context: c})
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
		method = http.MethodPost
	} else {
		target = httpconfig.URLWithContextAsQuery(target, c)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}
	httpconfig.ApplyHeaders(req, httpconfig.ParseHeaders(httpconfig.HeaderParams{
		ClientKey:     e.params.ClientKey,
		AppName:       e.params.AppName,
		ConnectionID:  e.params.ConnectionID,
		CustomHeaders: e.params.CustomHeaders,
		HeaderName:    e.params.HeaderName,
		ETag:          etag,
		IsPost:        e.params.UsePOSTRequests,
	}))
	return req, nil
}

func (e *Engine) readToggles(resp *http.Response) ([]model.Toggle, error) {
	isGzipped := resp.Header.Get("Content-Encoding") == "gzip" && !resp.Uncompressed
	reader, err := util.NewPayloadReader(resp.Body, isGzipped, e.params.MaxResponseSize)
	if err != nil {
		return nil, err
	}
	var parsed model.TogglesResponse
	if err := json.NewDecoder(reader).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.Toggles == nil {
		parsed.Toggles = []model.Toggle{}
	}
	return parsed.Toggles, nil
}
