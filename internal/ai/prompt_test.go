package ai

import (
	"testing"

	"github.com/stretchr/testify/require"

	genspec "github.com/ama5ter/spec2testdata/internal/spec"
)

func sampleEndpoint() *genspec.EndpointModel {
	return &genspec.EndpointModel{
		ID:     "post /users",
		Method: genspec.POST,
		Path:   "/users",
		RequestBody: &genspec.RequestBodyModel{
			Required: true,
			Content: []genspec.Media{{
				Mime: "application/json",
				Schema: &genspec.SchemaOrRef{Schema: &genspec.Schema{
					Type:     "object",
					Required: []string{"name"},
					Properties: map[string]*genspec.SchemaOrRef{
						"name": {Schema: &genspec.Schema{Type: "string"}},
					},
				}},
			}},
		},
		Responses: []genspec.ResponseModel{{
			Status: "200",
			Content: []genspec.Media{{
				Mime:   "application/json",
				Schema: &genspec.SchemaOrRef{Ref: &genspec.SchemaRef{Ref: "#/components/schemas/User"}},
			}},
		}},
	}
}

func TestBuildPrompt_Content(t *testing.T) {
	t.Parallel()
	prompt := BuildPrompt(sampleEndpoint())

	require.Contains(t, prompt, "Endpoint: /users")
	require.Contains(t, prompt, "Method: POST")
	require.Contains(t, prompt, `"type": "object"`)
	require.Contains(t, prompt, `"required"`)
	require.Contains(t, prompt, `"$ref": "#/components/schemas/User"`)
	require.Contains(t, prompt, "'request' and 'response'")
	require.Contains(t, prompt, "Only return valid JSON without any explanation or surrounding text.")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	t.Parallel()
	ep := sampleEndpoint()
	require.Equal(t, BuildPrompt(ep), BuildPrompt(ep))
}

func TestBuildPrompt_MissingSchemasRenderEmptyObjects(t *testing.T) {
	t.Parallel()
	ep := &genspec.EndpointModel{Method: genspec.GET, Path: "/ping"}
	prompt := BuildPrompt(ep)

	require.Contains(t, prompt, "Request Schema:\n{}\n")
	require.Contains(t, prompt, "Response Schema:\n{}\n")
}

func TestSchemaDoc_CarriesBounds(t *testing.T) {
	t.Parallel()
	lo, hi := 1.0, 9.0
	max := uint64(4)
	doc := schemaDoc(&genspec.SchemaOrRef{Schema: &genspec.Schema{
		Type:     "array",
		MinItems: 2,
		MaxItems: &max,
		Items:    &genspec.SchemaOrRef{Schema: &genspec.Schema{Type: "number", Min: &lo, Max: &hi}},
	}})

	require.EqualValues(t, 2, doc["minItems"])
	require.EqualValues(t, 4, doc["maxItems"])
	items := doc["items"].(map[string]any)
	require.Equal(t, 1.0, items["minimum"])
	require.Equal(t, 9.0, items["maximum"])
}
