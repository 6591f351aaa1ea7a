package spec

import (
    "strings"

    "gopkg.in/yaml.v3"
)

// preprocessV2ForCompatibility rewrites Swagger v2 operations that
// kin-openapi's converter rejects:
//   - multiple body parameters are merged into a single body parameter whose
//     schema is an object with one property per original parameter;
//   - operations mixing body and formData parameters have their body
//     parameters rewritten as formData and gain a multipart/form-data consume.
//
// Returns possibly-modified YAML bytes and whether anything changed. On parse
// or serialization errors the original bytes come back unmodified.
func preprocessV2ForCompatibility(data []byte) ([]byte, bool, error) {
    var doc map[string]any
    if err := yaml.Unmarshal(data, &doc); err != nil {
        return data, false, err
    }

    modified := false
    eachV2Operation(doc, func(op map[string]any) {
        if fixV2Operation(op) {
            modified = true
        }
    })
    if !modified {
        return data, false, nil
    }

    out, err := yaml.Marshal(doc)
    if err != nil {
        return data, false, err
    }
    return out, true, nil
}

func eachV2Operation(doc map[string]any, fn func(op map[string]any)) {
    paths, ok := doc["paths"].(map[string]any)
    if !ok {
        return
    }
    for _, pim := range paths {
        pi, ok := pim.(map[string]any)
        if !ok {
            continue
        }
        for method, opm := range pi {
            switch strings.ToLower(method) {
            case "get", "post", "put", "delete", "patch", "options", "head":
            default:
                continue
            }
            if op, ok := opm.(map[string]any); ok {
                fn(op)
            }
        }
    }
}

func fixV2Operation(op map[string]any) bool {
    params, ok := op["parameters"].([]any)
    if !ok || len(params) == 0 {
        return false
    }

    bodyCount := 0
    hasFormData := false
    for _, p := range params {
        pm, _ := p.(map[string]any)
        if pm == nil {
            continue
        }
        switch {
        case strings.EqualFold(asString(pm["in"]), "body"):
            bodyCount++
        case strings.EqualFold(asString(pm["in"]), "formData"):
            hasFormData = true
        }
    }
    if bodyCount == 0 {
        return false
    }

    if hasFormData {
        // Mixing body and formData is invalid; demote body params to formData.
        newParams := make([]any, 0, len(params))
        for _, p := range params {
            pm, _ := p.(map[string]any)
            if pm == nil {
                continue
            }
            if strings.EqualFold(asString(pm["in"]), "body") {
                newParams = append(newParams, formDataFromBodyParam(pm))
                continue
            }
            newParams = append(newParams, pm)
        }
        op["parameters"] = newParams
        var consumes []any
        if c, ok := op["consumes"].([]any); ok {
            consumes = c
        }
        if !containsString(consumes, "multipart/form-data") {
            op["consumes"] = append(consumes, "multipart/form-data")
        }
        return true
    }

    if bodyCount > 1 {
        // Merge every body param into one object-typed body schema.
        props := map[string]any{}
        required := make([]any, 0)
        newParams := make([]any, 0, len(params))
        for _, p := range params {
            pm, _ := p.(map[string]any)
            if pm == nil {
                continue
            }
            if !strings.EqualFold(asString(pm["in"]), "body") {
                newParams = append(newParams, p)
                continue
            }
            name := asString(pm["name"])
            if name == "" {
                name = "field"
            }
            schema := extractSchemaFromParam(pm)
            if schema == nil {
                schema = map[string]any{"type": "string"}
            }
            props[name] = schema
            if rb, _ := pm["required"].(bool); rb {
                required = append(required, name)
            }
        }
        bodySchema := map[string]any{"type": "object", "properties": props}
        if len(required) > 0 {
            bodySchema["required"] = required
        }
        merged := map[string]any{
            "in":     "body",
            "name":   "body",
            "schema": bodySchema,
        }
        op["parameters"] = append([]any{merged}, newParams...)
        return true
    }

    return false
}

func asString(v any) string {
    if s, ok := v.(string); ok {
        return s
    }
    return ""
}

func containsString(list []any, want string) bool {
    for _, v := range list {
        if s, ok := v.(string); ok && s == want {
            return true
        }
    }
    return false
}

func extractSchemaFromParam(pm map[string]any) map[string]any {
    if sch, ok := pm["schema"].(map[string]any); ok {
        return sch
    }
    // v2 non-body params declare type/items/format inline.
    t, _ := pm["type"].(string)
    if t == "" {
        return nil
    }
    m := map[string]any{"type": t}
    if it, ok := pm["items"].(map[string]any); ok {
        m["items"] = it
    }
    if f, ok := pm["format"].(string); ok && f != "" {
        m["format"] = f
    }
    return m
}

func formDataFromBodyParam(pm map[string]any) map[string]any {
    name := asString(pm["name"])
    if name == "" {
        name = "field"
    }
    out := map[string]any{
        "in":   "formData",
        "name": name,
    }
    if desc, ok := pm["description"].(string); ok && desc != "" {
        out["description"] = desc
    }
    if req, ok := pm["required"].(bool); ok {
        out["required"] = req
    }
    var typ, format string
    var items any
    if sch, ok := pm["schema"].(map[string]any); ok {
        typ, _ = sch["type"].(string)
        if it, ok := sch["items"].(map[string]any); ok {
            items = it
        }
        format, _ = sch["format"].(string)
        if typ == "" && sch["$ref"] != nil {
            // A referenced object cannot be expressed as formData.
            typ = "string"
        }
    }
    if typ == "" {
        typ, _ = pm["type"].(string)
        if it, ok := pm["items"].(map[string]any); ok {
            items = it
        }
        format, _ = pm["format"].(string)
    }
    if typ == "" {
        typ = "string"
    }
    out["type"] = typ
    if items != nil {
        out["items"] = items
    }
    if format != "" {
        out["format"] = format
    }
    return out
}
