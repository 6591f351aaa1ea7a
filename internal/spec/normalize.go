package spec

import (
    "context"
    "fmt"
    "regexp"
    "sort"
    "strings"

    "github.com/getkin/kin-openapi/openapi3"
)

// BuildOption configures how the ServiceModel is built from an OpenAPI doc.
type BuildOption func(*buildConfig)

type buildConfig struct {
    includeTags map[string]struct{}
    excludeTags map[string]struct{}
    methods     map[HttpMethod]struct{}
    pathRes     []*regexp.Regexp
}

// WithIncludeTags keeps only endpoints that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
    return func(c *buildConfig) {
        if len(tags) == 0 {
            return
        }
        if c.includeTags == nil {
            c.includeTags = make(map[string]struct{}, len(tags))
        }
        for _, t := range tags {
            t = strings.TrimSpace(t)
            if t == "" {
                continue
            }
            c.includeTags[t] = struct{}{}
        }
    }
}

// WithExcludeTags removes endpoints that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
    return func(c *buildConfig) {
        if len(tags) == 0 {
            return
        }
        if c.excludeTags == nil {
            c.excludeTags = make(map[string]struct{}, len(tags))
        }
        for _, t := range tags {
            t = strings.TrimSpace(t)
            if t == "" {
                continue
            }
            c.excludeTags[t] = struct{}{}
        }
    }
}

// WithMethods keeps only endpoints using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) BuildOption {
    return func(c *buildConfig) {
        if len(methods) == 0 {
            return
        }
        if c.methods == nil {
            c.methods = make(map[HttpMethod]struct{}, len(methods))
        }
        for _, m := range methods {
            c.methods[m] = struct{}{}
        }
    }
}

// WithPathPatterns keeps only endpoints whose path matches at least one of the
// provided regular expressions.
func WithPathPatterns(patterns []string) BuildOption {
    return func(c *buildConfig) {
        for _, p := range patterns {
            p = strings.TrimSpace(p)
            if p == "" {
                continue
            }
            re, err := regexp.Compile(p)
            if err != nil {
                // Invalid patterns become a sentinel that never matches, so a
                // bad filter yields zero endpoints instead of a panic.
                re = regexp.MustCompile("a^$")
            }
            c.pathRes = append(c.pathRes, re)
        }
    }
}

// BuildServiceModel converts an OpenAPI v3 document into the internal model,
// applying any include/exclude tag, method, and path filters. The resulting
// model (including its schema registry) is never mutated afterwards.
func BuildServiceModel(ctx context.Context, doc *openapi3.T, opts ...BuildOption) (*ServiceModel, error) {
    _ = ctx
    if doc == nil {
        return nil, fmt.Errorf("nil document")
    }

    cfg := &buildConfig{}
    for _, opt := range opts {
        opt(cfg)
    }

    sm := &ServiceModel{
        Title:       safeStr(doc.Info.Title),
        Version:     safeStr(doc.Info.Version),
        Description: safeStr(doc.Info.Description),
    }

    // Component schemas become the registry. Keys are iterated sorted so
    // repeated builds of the same document produce the same model.
    if doc.Components != nil && doc.Components.Schemas != nil {
        sm.Schemas = make(SchemaRegistry, len(doc.Components.Schemas))
        keys := make([]string, 0, len(doc.Components.Schemas))
        for name := range doc.Components.Schemas {
            keys = append(keys, name)
        }
        sort.Strings(keys)
        for _, name := range keys {
            ref := doc.Components.Schemas[name]
            if ref == nil {
                continue
            }
            sor := toSchemaOrRef(ref)
            if sor == nil {
                continue
            }
            if sor.Ref != nil {
                // A top-level alias entry. The registry keeps the target
                // reference so consumers can follow the chain hop by hop.
                sm.Schemas[name] = Schema{Name: name, Ref: sor.Ref.Ref}
                continue
            }
            schema := *sor.Schema
            schema.Name = name
            sm.Schemas[name] = schema
        }
    }

    if doc.Paths != nil {
        pathKeys := make([]string, 0, len(doc.Paths))
        for p := range doc.Paths {
            pathKeys = append(pathKeys, p)
        }
        sort.Strings(pathKeys)

        for _, p := range pathKeys {
            item := doc.Paths[p]
            if item == nil {
                continue
            }
            // Path-level parameters apply to every operation unless the
            // operation redeclares them.
            baseParams := make(map[string]*ParameterModel)
            for _, pref := range item.Parameters {
                pm := toParameterModel(pref)
                if pm == nil {
                    continue
                }
                baseParams[paramKey(pm.In, pm.Name)] = pm
            }

            ops := []struct {
                m HttpMethod
                o *openapi3.Operation
            }{
                {GET, item.Get},
                {POST, item.Post},
                {PUT, item.Put},
                {DELETE, item.Delete},
                {PATCH, item.Patch},
                {HEAD, item.Head},
                {OPTIONS, item.Options},
                {TRACE, item.Trace},
            }

            for _, pair := range ops {
                if pair.o == nil {
                    continue
                }
                if len(cfg.methods) > 0 {
                    if _, ok := cfg.methods[pair.m]; !ok {
                        continue
                    }
                }
                if len(cfg.pathRes) > 0 {
                    matched := false
                    for _, re := range cfg.pathRes {
                        if re.MatchString(p) {
                            matched = true
                            break
                        }
                    }
                    if !matched {
                        continue
                    }
                }

                mergedParams := make(map[string]*ParameterModel, len(baseParams))
                for k, v := range baseParams {
                    mergedParams[k] = v
                }
                for _, pref := range pair.o.Parameters {
                    pm := toParameterModel(pref)
                    if pm == nil {
                        continue
                    }
                    mergedParams[paramKey(pm.In, pm.Name)] = pm
                }
                params := make([]ParameterModel, 0, len(mergedParams))
                for _, v := range mergedParams {
                    params = append(params, *v)
                }
                sort.Slice(params, func(i, j int) bool {
                    if params[i].In == params[j].In {
                        return params[i].Name < params[j].Name
                    }
                    return params[i].In < params[j].In
                })

                var rb *RequestBodyModel
                if pair.o.RequestBody != nil && pair.o.RequestBody.Value != nil {
                    rb = &RequestBodyModel{
                        Required: pair.o.RequestBody.Value.Required,
                        Content:  toMediaList(pair.o.RequestBody.Value.Content),
                    }
                }

                var responses []ResponseModel
                if pair.o.Responses != nil {
                    codes := make([]string, 0, len(pair.o.Responses))
                    for k := range pair.o.Responses {
                        codes = append(codes, k)
                    }
                    sort.Strings(codes)
                    for _, code := range codes {
                        rref := pair.o.Responses[code]
                        if rref == nil || rref.Value == nil {
                            continue
                        }
                        desc := ""
                        if rref.Value.Description != nil {
                            desc = *rref.Value.Description
                        }
                        responses = append(responses, ResponseModel{
                            Status:      code,
                            Description: desc,
                            Content:     toMediaList(rref.Value.Content),
                        })
                    }
                }

                tags := make([]string, 0, len(pair.o.Tags))
                for _, t := range pair.o.Tags {
                    t = strings.TrimSpace(t)
                    if t != "" {
                        tags = append(tags, t)
                    }
                }
                if !allowByTags(tags, cfg) {
                    continue
                }

                sm.Endpoints = append(sm.Endpoints, EndpointModel{
                    ID:          string(pair.m) + " " + p,
                    Method:      pair.m,
                    Path:        p,
                    Summary:     safeStr(pair.o.Summary),
                    Description: safeStr(pair.o.Description),
                    Tags:        tags,
                    Parameters:  params,
                    RequestBody: rb,
                    Responses:   responses,
                })
            }
        }
    }

    sm.Tags = collectSortedTags(sm.Endpoints)

    return sm, nil
}

func allowByTags(tags []string, cfg *buildConfig) bool {
    if len(cfg.includeTags) > 0 {
        ok := false
        for _, t := range tags {
            if _, yes := cfg.includeTags[t]; yes {
                ok = true
                break
            }
        }
        if !ok {
            return false
        }
    }
    if len(cfg.excludeTags) > 0 {
        for _, t := range tags {
            if _, blocked := cfg.excludeTags[t]; blocked {
                return false
            }
        }
    }
    return true
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }

func toParameterModel(pref *openapi3.ParameterRef) *ParameterModel {
    if pref == nil || pref.Value == nil {
        return nil
    }
    p := pref.Value
    pm := &ParameterModel{
        Name:     safeStr(p.Name),
        In:       safeStr(p.In),
        Required: p.Required,
    }
    if p.Schema != nil {
        pm.Schema = toSchemaOrRef(p.Schema)
    }
    return pm
}

func toMediaList(content openapi3.Content) []Media {
    if content == nil {
        return nil
    }
    keys := make([]string, 0, len(content))
    for k := range content {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    out := make([]Media, 0, len(keys))
    for _, mime := range keys {
        mt := content[mime]
        if mt == nil {
            continue
        }
        out = append(out, Media{
            Mime:   mime,
            Schema: toSchemaOrRef(mt.Schema),
        })
    }
    if len(out) == 0 {
        return nil
    }
    return out
}

// toSchemaOrRef converts a kin-openapi schema reference into the internal
// form, preserving $ref indirection rather than inlining it: the synthesis
// engine resolves refs lazily per descent, which is what keeps recursive
// component graphs from expanding eagerly here.
func toSchemaOrRef(ref *openapi3.SchemaRef) *SchemaOrRef {
    if ref == nil {
        return nil
    }
    if ref.Ref != "" {
        return &SchemaOrRef{Ref: &SchemaRef{Ref: ref.Ref}}
    }
    if ref.Value == nil {
        return nil
    }
    v := ref.Value
    s := &Schema{
        Type:        safeStr(v.Type),
        Description: safeStr(v.Description),
        Format:      safeStr(v.Format),
        Pattern:     safeStr(v.Pattern),
        Required:    append([]string(nil), v.Required...),
        Min:         v.Min,
        Max:         v.Max,
        MinLength:   v.MinLength,
        MaxLength:   v.MaxLength,
        MinItems:    v.MinItems,
        MaxItems:    v.MaxItems,
    }
    if len(v.Enum) > 0 {
        s.Enum = append([]any(nil), v.Enum...)
    }
    if v.Items != nil {
        s.Items = toSchemaOrRef(v.Items)
    }
    if len(v.Properties) > 0 {
        s.Properties = make(map[string]*SchemaOrRef, len(v.Properties))
        for name, pref := range v.Properties {
            s.Properties[name] = toSchemaOrRef(pref)
        }
    }
    return &SchemaOrRef{Schema: s}
}

func collectSortedTags(endpoints []EndpointModel) []string {
    set := make(map[string]struct{})
    for _, ep := range endpoints {
        for _, t := range ep.Tags {
            if t = strings.TrimSpace(t); t != "" {
                set[t] = struct{}{}
            }
        }
    }
    if len(set) == 0 {
        return nil
    }
    out := make([]string, 0, len(set))
    for t := range set {
        out = append(out, t)
    }
    sort.Strings(out)
    return out
}
