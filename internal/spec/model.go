package spec

// Internal model consumed by the synthesis engines. Built once per loaded
// document and read-only afterwards.

import "strings"

type HttpMethod string

const (
    GET     HttpMethod = "get"
    POST    HttpMethod = "post"
    PUT     HttpMethod = "put"
    DELETE  HttpMethod = "delete"
    PATCH   HttpMethod = "patch"
    HEAD    HttpMethod = "head"
    OPTIONS HttpMethod = "options"
    TRACE   HttpMethod = "trace"
)

type ServiceModel struct {
    Title       string
    Version     string
    Description string
    Tags        []string
    Endpoints   []EndpointModel
    Schemas     SchemaRegistry
}

// SchemaRegistry maps component schema names to their definitions.
type SchemaRegistry map[string]Schema

// Endpoint returns the endpoint matching the exact path template and the
// method (compared case-insensitively), or nil when absent.
func (sm *ServiceModel) Endpoint(path, method string) *EndpointModel {
    for i := range sm.Endpoints {
        ep := &sm.Endpoints[i]
        if ep.Path == path && strings.EqualFold(string(ep.Method), method) {
            return ep
        }
    }
    return nil
}

type EndpointModel struct {
    ID          string // method+path
    Method      HttpMethod
    Path        string
    Summary     string
    Description string
    Tags        []string
    Parameters  []ParameterModel
    RequestBody *RequestBodyModel
    Responses   []ResponseModel
}

// Response returns the response model for the given status code, or nil.
func (e *EndpointModel) Response(status string) *ResponseModel {
    for i := range e.Responses {
        if e.Responses[i].Status == status {
            return &e.Responses[i]
        }
    }
    return nil
}

type ParameterModel struct {
    Name     string
    In       string // path|query|header|cookie
    Required bool
    Schema   *SchemaOrRef
}

type RequestBodyModel struct {
    Content  []Media
    Required bool
}

type ResponseModel struct {
    Status      string // 200, 4xx, default
    Description string
    Content     []Media
}

// JSONMedia returns the application/json media entry, or nil when the body
// declares no JSON content.
func JSONMedia(content []Media) *Media {
    for i := range content {
        if content[i].Mime == "application/json" {
            return &content[i]
        }
    }
    return nil
}

type Media struct {
    Mime   string
    Schema *SchemaOrRef
}

// Schema carries the subset of JSON Schema the synthesizers interpret:
// type dispatch, object/array structure, enums, formats, and numeric,
// length, and cardinality bounds. Bound fields mirror kin-openapi's
// representation (pointer means "not declared").
type Schema struct {
    Name string
    // Ref is set only on registry entries that are pure aliases
    // (a component schema whose body is a lone $ref); it holds the
    // target reference so consumers can follow the chain.
    Ref         string
    Type        string
    Description string
    Format      string
    Pattern     string
    Properties  map[string]*SchemaOrRef
    Required    []string
    Items       *SchemaOrRef
    Enum        []any

    Min       *float64
    Max       *float64
    MinLength uint64
    MaxLength *uint64
    MinItems  uint64
    MaxItems  *uint64
}

// IsRequired reports whether the named property is in the schema's
// required set.
func (s *Schema) IsRequired(name string) bool {
    for _, r := range s.Required {
        if r == name {
            return true
        }
    }
    return false
}

type SchemaRef struct{ Ref string }

type SchemaOrRef struct {
    Schema *Schema
    Ref    *SchemaRef
}
