package models

import "encoding/json"

type EndpointKind int

const (
	// {url_format, parameters} — URL template plus a parameter mapping
	// whose path parameter is extended with the chunk's sharded path.
	EndpointTemplate EndpointKind = iota
	// {url} — plain base URL, sharded path appended directly.
	EndpointDirect
)

// EndpointDescriptor is one short-lived CDN authorization descriptor from a
// secure_link response. The two wire shapes are resolved into Kind once at
// parse time instead of being re-inspected per chunk.
type EndpointDescriptor struct {
	Kind         EndpointKind
	EndpointName string

	// Template shape
	URLFormat  string
	Parameters map[string]any

	// Direct shape
	URL string
}

type endpointDescriptorJSON struct {
	EndpointName string         `json:"endpoint_name"`
	URLFormat    string         `json:"url_format"`
	Parameters   map[string]any `json:"parameters"`
	URL          string         `json:"url"`
}

func (e *EndpointDescriptor) UnmarshalJSON(data []byte) error {
	var raw endpointDescriptorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.EndpointName = raw.EndpointName

	if raw.URLFormat != "" && raw.Parameters != nil {
		e.Kind = EndpointTemplate
		e.URLFormat = raw.URLFormat
		e.Parameters = raw.Parameters
		return nil
	}

	e.Kind = EndpointDirect
	e.URL = raw.URL
	return nil
}

type SecureLinkResponse struct {
	// Order is the fallback priority and is preserved verbatim.
	URLs []EndpointDescriptor `json:"urls"`
}
