// api/search/elasticsearch.go
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	sift_errors "github.com/dev-mohitbeniwal/sift/api/errors"
	"github.com/dev-mohitbeniwal/sift/api/model"
)

// Executor runs a query against the document index with a security filter
// ANDed in. The engine builds the filter; the executor never widens it.
type Executor interface {
	ExecuteFilteredSearch(ctx context.Context, query string, filter map[string]interface{}) (*model.SearchResultSet, error)
}

type ESExecutor struct {
	esClient *elasticsearch.Client
	index    string
	maxHits  int
}

func NewESExecutor(esURL, index string, maxHits int) (*ESExecutor, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if maxHits <= 0 {
		maxHits = 50
	}
	return &ESExecutor{esClient: esClient, index: index, maxHits: maxHits}, nil
}

func (e *ESExecutor) ExecuteFilteredSearch(ctx context.Context, query string, filter map[string]interface{}) (*model.SearchResultSet, error) {
	var match interface{}
	if strings.TrimSpace(query) == "" {
		match = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		match = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "content"},
			},
		}
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   []interface{}{match},
				"filter": []interface{}{filter},
			},
		},
		"size": e.maxHits,
	}

	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := e.esClient.Search(
		e.esClient.Search.WithContext(ctx),
		e.esClient.Search.WithIndex(e.index),
		e.esClient.Search.WithBody(strings.NewReader(buf.String())),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", sift_errors.ErrSearchFailed, res.String())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string                 `json:"_id"`
				Score  float64                `json:"_score"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	resultSet := &model.SearchResultSet{
		Total:   parsed.Hits.Total.Value,
		Results: make([]model.SearchResult, len(parsed.Hits.Hits)),
	}
	for i, hit := range parsed.Hits.Hits {
		resultSet.Results[i] = model.SearchResult{
			ID:     hit.ID,
			Score:  hit.Score,
			Source: hit.Source,
		}
	}
	return resultSet, nil
}
