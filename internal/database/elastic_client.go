package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/olivere/elastic/v7"
)

const metricIndex = "ltx-metrics"

const metricIndexMapping = `{
	"mappings": {
		"properties": {
			"id":         {"type": "long"},
			"type":       {"type": "keyword"},
			"status":     {"type": "keyword"},
			"name":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"definition": {"type": "text"},
			"notes":      {"type": "text"}
		}
	}
}`

// MetricDoc mirrors domain.Metric for ES storage.
type MetricDoc struct {
	ID         int64  `json:"id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
	Notes      string `json:"notes"`
}

func newMetricDoc(m domain.Metric) MetricDoc {
	return MetricDoc{
		ID:         m.ID,
		Type:       string(m.Type),
		Status:     m.Status,
		Name:       m.Name,
		Definition: m.Definition,
		Notes:      m.Notes,
	}
}

// ElasticSearchClient wraps olivere/elastic client and indexes the metric library.
type ElasticSearchClient struct {
	client *elastic.Client
	index  string
}

// NewElasticSearchClient creates a new client for Elasticsearch 7.x.
func NewElasticSearchClient(url string) (*ElasticSearchClient, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // Essential when using Docker or cloud
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &ElasticSearchClient{client: client, index: metricIndex}, nil
}

// EnsureIndex creates the metric index with its mapping if it does not exist.
func (es *ElasticSearchClient) EnsureIndex(ctx context.Context) error {
	exists, err := es.client.IndexExists(es.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", es.index, err)
	}
	if exists {
		return nil
	}
	if _, err := es.client.CreateIndex(es.index).BodyString(metricIndexMapping).Do(ctx); err != nil {
		return fmt.Errorf("failed to create index %s: %w", es.index, err)
	}
	return nil
}

// IndexMetric indexes a metric document using its id.
func (es *ElasticSearchClient) IndexMetric(ctx context.Context, m domain.Metric) error {
	_, err := es.client.Index().
		Index(es.index).
		Id(strconv.FormatInt(m.ID, 10)).
		BodyJson(newMetricDoc(m)).
		Refresh("true"). // Make changes immediately searchable
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index metric %d: %w", m.ID, err)
	}
	return nil
}

// BulkIndexMetrics efficiently indexes multiple metrics.
func (es *ElasticSearchClient) BulkIndexMetrics(ctx context.Context, metrics []domain.Metric) error {
	bulkRequest := es.client.Bulk()

	for _, m := range metrics {
		req := elastic.NewBulkIndexRequest().
			Index(es.index).
			Id(strconv.FormatInt(m.ID, 10)).
			Doc(newMetricDoc(m))
		bulkRequest = bulkRequest.Add(req)
	}

	if bulkRequest.NumberOfActions() == 0 {
		return nil
	}

	bulkResponse, err := bulkRequest.Refresh("true").Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}

	if bulkResponse.Errors {
		for _, item := range bulkResponse.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk item failed: %s", op.Error.Reason)
				}
			}
		}
	}

	return nil
}

// SearchMetrics performs a full-text match on name, definition and notes and
// returns the matching metric ids by relevance.
func (es *ElasticSearchClient) SearchMetrics(ctx context.Context, filter domain.MetricFilter) ([]int64, error) {
	query := elastic.NewBoolQuery()
	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Must(elastic.NewMultiMatchQuery(q, "name^2", "definition", "notes").Fuzziness("AUTO"))
	} else {
		query = query.Must(elastic.NewMatchAllQuery())
	}
	if filter.Type != "" {
		query = query.Filter(elastic.NewTermQuery("type", string(filter.Type)))
	}
	if filter.ActiveOnly {
		query = query.Filter(elastic.NewTermQuery("status", domain.StatusActive))
	}

	size := filter.Limit
	if size <= 0 {
		size = 50
	}

	searchResult, err := es.client.Search().
		Index(es.index).
		Query(query).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	ids := make([]int64, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		id, err := strconv.ParseInt(hit.Id, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
