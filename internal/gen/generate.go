package gen

import (
	genspec "github.com/ama5ter/spec2testdata/internal/spec"
)

// ForEndpoint synthesizes a request/response payload for the endpoint with
// the given path template and HTTP method (matched case-insensitively).
// A missing endpoint is the one hard failure on this path; everything else
// degrades to best-effort data.
func (s *Synthesizer) ForEndpoint(path, method string) (*Payload, error) {
	ep := s.model.Endpoint(path, method)
	if ep == nil {
		return nil, &NotFoundError{Method: method, Path: path}
	}

	req, err := s.requestValue(ep)
	if err != nil {
		return nil, err
	}
	resp, err := s.responseValue(ep)
	if err != nil {
		return nil, err
	}
	return &Payload{Request: req, Response: resp}, nil
}

// requestValue builds the request side: the JSON body schema when declared,
// else the first declared body content of any type, else one scalar per
// query/path/header parameter keyed by name.
func (s *Synthesizer) requestValue(ep *genspec.EndpointModel) (any, error) {
	if ep.RequestBody != nil && len(ep.RequestBody.Content) > 0 {
		if m := genspec.JSONMedia(ep.RequestBody.Content); m != nil {
			return s.Value(m.Schema)
		}
		// Content is sorted by mime, so "first" is deterministic.
		return s.Value(ep.RequestBody.Content[0].Schema)
	}

	params := map[string]any{}
	for i := range ep.Parameters {
		p := &ep.Parameters[i]
		switch p.In {
		case "query", "path", "header":
			v, err := s.Value(p.Schema)
			if err != nil {
				return nil, err
			}
			params[p.Name] = v
		}
	}
	return params, nil
}

// responseValue builds the expected response from the 200 response's JSON
// schema, else the 201 response's. Whichever status is present first wins
// outright: a 200 without JSON content yields an empty object even when a
// 201 declares a body.
func (s *Synthesizer) responseValue(ep *genspec.EndpointModel) (any, error) {
	for _, status := range []string{"200", "201"} {
		r := ep.Response(status)
		if r == nil {
			continue
		}
		if m := genspec.JSONMedia(r.Content); m != nil {
			return s.Value(m.Schema)
		}
		return map[string]any{}, nil
	}
	return map[string]any{}, nil
}
