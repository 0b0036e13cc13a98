package icongen

import "errors"

// Failure taxonomy for the gateway. Callers branch with errors.Is; message
// detail rides along via fmt.Errorf("%w: ...") wrapping.
var (
	ErrMissingCredential = errors.New("missing upstream API credential")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUpstream          = errors.New("upstream request failed")
	ErrUpstreamTimeout   = errors.New("upstream request timed out")
	ErrNoImage           = errors.New("no image generated")
	ErrTransport         = errors.New("upstream transport failure")
)

// Request - one unit of generation work. Prompt must be non-empty; everything
// else has a default. SourceImage switches the gateway to the edit endpoint.
type Request struct {
	Prompt      string
	Model       string
	Size        string
	Quality     string
	SourceImage []byte
	SourceName  string
}

// Result - the normalized outcome: exactly one URL, either hosted or a
// self-contained data URL. Callers never branch on representation.
type Result struct {
	URL string `json:"url"`
}

// generationPayload - JSON body for the generations endpoint
type generationPayload struct {
	Model        string `json:"model"`
	Prompt       string `json:"prompt"`
	Size         string `json:"size"`
	Quality      string `json:"quality"`
	N            int    `json:"n"`
	Background   string `json:"background"`
	OutputFormat string `json:"output_format"`
}

// providerImage - one generated item as the provider returns it, before
// normalization. The provider sends either a hosted URL or embedded base64.
type providerImage struct {
	URL     string `json:"url"`
	B64JSON string `json:"b64_json"`
}

type providerResponse struct {
	Data []providerImage `json:"data"`
}

// providerError - error envelope on non-success statuses. Parsed tolerantly;
// a body that is not this shape simply yields an empty message.
type providerError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// generateIconRequest - inbound JSON body for POST /api/generate-icon
type generateIconRequest struct {
	Prompt     string `json:"prompt"`
	Model      string `json:"model,omitempty"`
	Size       string `json:"size,omitempty"`
	Quality    string `json:"quality,omitempty"`
	UsePlanner bool   `json:"usePlanner,omitempty"`
	BaseColor  string `json:"baseColor,omitempty"`
	IconColor  string `json:"iconColor,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
