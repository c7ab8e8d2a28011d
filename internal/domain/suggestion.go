package domain

type SuggestionType string

const (
	SuggestCity     SuggestionType = "city"
	SuggestDistrict SuggestionType = "district"
	SuggestCategory SuggestionType = "category"
	SuggestListing  SuggestionType = "listing"
)

// SearchSuggestion is a ranked completion for a partial query.
// Count is how many listings the completion would match (>= 0).
type SearchSuggestion struct {
	Text  string         `json:"text"`
	Type  SuggestionType `json:"type"`
	Count int64          `json:"count"`
}
