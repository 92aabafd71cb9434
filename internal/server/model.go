package server

type expandQuery struct {
	URL       string `schema:"url"`
	Redirects *int   `schema:"redirects"`
	Timeout   int64  `schema:"timeout"` // milliseconds
	Strict    bool   `schema:"strict"`
}

type batchRequest struct {
	URLs      []string `json:"urls"`
	Redirects *int     `json:"redirects"`
	Timeout   int64    `json:"timeout"`
	Strict    bool     `json:"strict"`
}

type expandResponse struct {
	OriginalURL string `json:"original_url"`
	ExpandedURL string `json:"expanded_url,omitempty"`
	Shortened   bool   `json:"shortened"`
	Outcome     string `json:"outcome"`
	Error       string `json:"error,omitempty"`
}

type batchResponse struct {
	Results []expandResponse `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}
