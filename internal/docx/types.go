package docx

// Placeholder represents a fillable slot detected in a document.
//
// Name is the normalized identifier used as the key for filled values; when
// the same label occurs more than once the oracle path numbers the names
// (by_1, by_2) so each occurrence can be filled independently. Original is the
// literal text as it appears in the flattened document and is the join key
// back into the raw XML. Position is a character offset into the flattened
// text, used only for ordering.
type Placeholder struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Original    string `json:"original"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

// Substitution represents one resolved replacement: a filled value bound to
// the literal token it targets and the 1-based occurrence of that token.
type Substitution struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	Original   string `json:"original"`
	Occurrence int    `json:"occurrence"`
	Position   int    `json:"position"`
}

// Request Types

// ParseDocumentRequest represents a request to parse an uploaded .docx.
type ParseDocumentRequest struct {
	Filename string `json:"filename"`
	Content  []byte `json:"-"`
}

// GenerateDocumentRequest represents a request to produce a filled .docx.
type GenerateDocumentRequest struct {
	Content      []byte            `json:"-"`
	FilledValues map[string]string `json:"filledValues"`
	Placeholders []Placeholder     `json:"placeholders,omitempty"`
}

// Response Types

// ParseDocumentResult represents the result of parsing an uploaded .docx.
type ParseDocumentResult struct {
	Text              string        `json:"text"`
	Placeholders      []Placeholder `json:"placeholders"`
	DetectionMethod   string        `json:"detectionMethod"`
	TotalPlaceholders int           `json:"totalPlaceholders"`
}

// GenerateDocumentResult represents the result of a document generation.
type GenerateDocumentResult struct {
	Document []byte `json:"-"`
	Filename string `json:"filename"`
}

// Detection method identifiers reported to the client.
const (
	DetectionMethodRegex  = "regex"
	DetectionMethodOracle = "oracle"
)
