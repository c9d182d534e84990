// api/model/search.go
package model

// SearchResult is a single document returned by the filtered search.
type SearchResult struct {
	ID     string                 `json:"id"`
	Score  float64                `json:"score"`
	Source map[string]interface{} `json:"source"`
}

type SearchResultSet struct {
	Total   int            `json:"total"`
	Results []SearchResult `json:"results"`
}

// AccessInfo surfaces the evaluator outcomes that shaped a response, so a
// caller can see why it got the documents it did.
type AccessInfo struct {
	Time        AccessDecision       `json:"time"`
	Geo         AccessDecision       `json:"geo"`
	Permissions EffectivePermissions `json:"permissions"`
}

// SearchResponse is the terminal result of one trip through the filter engine.
type SearchResponse struct {
	Allowed         bool                   `json:"allowed"`
	Results         *SearchResultSet       `json:"results,omitempty"`
	AppliedFilter   map[string]interface{} `json:"applied_filter,omitempty"`
	AccessInfo      *AccessInfo            `json:"access_info,omitempty"`
	RestrictionType string                 `json:"restriction_type,omitempty"`
	Reason          string                 `json:"reason,omitempty"`
	Error           string                 `json:"error,omitempty"`
}
