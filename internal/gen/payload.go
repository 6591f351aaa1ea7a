package gen

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Payload is the {request, response} pair produced for one endpoint. Both
// synthesis backends (randomized and AI-backed) emit this shape, which is
// what makes them interchangeable to callers.
type Payload struct {
	Request  any `json:"request"`
	Response any `json:"response"`
}

// MarshalIndent renders the payload as pretty-printed JSON.
func (p *Payload) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// WriteFile persists the payload as pretty-printed JSON at path.
func (p *Payload) WriteFile(path string) error {
	data, err := p.MarshalIndent()
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}
