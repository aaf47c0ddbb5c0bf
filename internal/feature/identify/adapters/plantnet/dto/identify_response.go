// Package dto defines data transfer objects for the Pl@ntNet identify API.
package dto

// IdentifyResponse represents the JSON response from the /v2/identify/{project} endpoint.
// Every nested field is optional; absent values decode to nil or zero.
type IdentifyResponse struct {
	Language                        string   `json:"language"`
	PreferedReferential             string   `json:"preferedReferential"`
	BestMatch                       string   `json:"bestMatch"`
	Results                         []Result `json:"results"`
	Version                         string   `json:"version"`
	RemainingIdentificationRequests *int     `json:"remainingIdentificationRequests,omitempty"`
}

// Result is a single species hypothesis.
type Result struct {
	Score   *float64 `json:"score"`
	Species *Species `json:"species"`
}

// Species holds the taxonomy of a match.
type Species struct {
	ScientificNameWithoutAuthor string   `json:"scientificNameWithoutAuthor"`
	ScientificNameAuthorship    string   `json:"scientificNameAuthorship"`
	ScientificName              string   `json:"scientificName"`
	Genus                       *Taxon   `json:"genus"`
	Family                      *Taxon   `json:"family"`
	CommonNames                 []string `json:"commonNames"`
}

// Taxon is a genus or family record.
type Taxon struct {
	ScientificNameWithoutAuthor string `json:"scientificNameWithoutAuthor"`
	ScientificNameAuthorship    string `json:"scientificNameAuthorship"`
	ScientificName              string `json:"scientificName"`
}

// ErrorResponse is the body Pl@ntNet returns with non-200 statuses.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}
