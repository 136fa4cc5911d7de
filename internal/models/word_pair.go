package models

// WordPair is the pair of secret words for one game
type WordPair struct {
	// Main is given to every civilian
	Main string `json:"main"`

	// Imposter is given to the imposter
	Imposter string `json:"imposter"`

	// Category identifies the pair and is never repeated until the pool is exhausted
	Category string `json:"category"`
}
