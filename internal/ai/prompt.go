package ai

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	genspec "github.com/ama5ter/spec2testdata/internal/spec"
)

// BuildPrompt renders the completion prompt for an endpoint. The output is a
// pure function of the endpoint model: same endpoint, same prompt, so prompt
// content is testable by direct comparison.
func BuildPrompt(ep *genspec.EndpointModel) string {
	var reqSchema, respSchema *genspec.SchemaOrRef
	if ep.RequestBody != nil {
		if m := genspec.JSONMedia(ep.RequestBody.Content); m != nil {
			reqSchema = m.Schema
		}
	}
	if r := ep.Response("200"); r != nil {
		if m := genspec.JSONMedia(r.Content); m != nil {
			respSchema = m.Schema
		}
	}

	var b strings.Builder
	b.WriteString("Generate realistic test data for the following API endpoint:\n\n")
	fmt.Fprintf(&b, "Endpoint: %s\n", ep.Path)
	fmt.Fprintf(&b, "Method: %s\n\n", strings.ToUpper(string(ep.Method)))
	fmt.Fprintf(&b, "Request Schema:\n%s\n\n", schemaJSON(reqSchema))
	fmt.Fprintf(&b, "Response Schema:\n%s\n\n", schemaJSON(respSchema))
	b.WriteString("Please create JSON test data with 'request' and 'response' properties that match these schemas.\n")
	b.WriteString("The data should be realistic and contextually appropriate for this endpoint.\n")
	b.WriteString("Only return valid JSON without any explanation or surrounding text.\n")
	b.WriteString("Format:\n{\n  \"request\": {...},\n  \"response\": {...}\n}\n")
	return b.String()
}

// schemaJSON pretty-prints a schema node in JSON Schema shape. Absent nodes
// render as an empty object. Map keys serialize sorted, keeping the output
// deterministic.
func schemaJSON(node *genspec.SchemaOrRef) string {
	doc := schemaDoc(node)
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

func schemaDoc(node *genspec.SchemaOrRef) map[string]any {
	if node == nil {
		return map[string]any{}
	}
	if node.Ref != nil {
		return map[string]any{"$ref": node.Ref.Ref}
	}
	sc := node.Schema
	if sc == nil {
		return map[string]any{}
	}

	doc := map[string]any{}
	if sc.Type != "" {
		doc["type"] = sc.Type
	}
	if sc.Format != "" {
		doc["format"] = sc.Format
	}
	if sc.Pattern != "" {
		doc["pattern"] = sc.Pattern
	}
	if sc.Description != "" {
		doc["description"] = sc.Description
	}
	if len(sc.Enum) > 0 {
		doc["enum"] = sc.Enum
	}
	if len(sc.Required) > 0 {
		doc["required"] = sc.Required
	}
	if len(sc.Properties) > 0 {
		props := make(map[string]any, len(sc.Properties))
		for name, p := range sc.Properties {
			props[name] = schemaDoc(p)
		}
		doc["properties"] = props
	}
	if sc.Items != nil {
		doc["items"] = schemaDoc(sc.Items)
	}
	if sc.Min != nil {
		doc["minimum"] = *sc.Min
	}
	if sc.Max != nil {
		doc["maximum"] = *sc.Max
	}
	if sc.MinLength > 0 {
		doc["minLength"] = sc.MinLength
	}
	if sc.MaxLength != nil {
		doc["maxLength"] = *sc.MaxLength
	}
	if sc.MinItems > 0 {
		doc["minItems"] = sc.MinItems
	}
	if sc.MaxItems != nil {
		doc["maxItems"] = *sc.MaxItems
	}
	return doc
}
