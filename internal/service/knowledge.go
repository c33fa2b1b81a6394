package service

import (
	"context"
	"errors"
	"strings"

	"hvac_assistant/internal/models"
	"hvac_assistant/internal/repository"
)

// KnowledgeService fronts the query/response cache table. It normalizes
// queries the same way on both paths so lookups hit what saves wrote.
type KnowledgeService struct {
	knowledgeRepo repository.KnowledgeRepo
}

func NewKnowledgeService(knowledgeRepo repository.KnowledgeRepo) *KnowledgeService {
	return &KnowledgeService{knowledgeRepo: knowledgeRepo}
}

var _ KnowledgeCache = (*KnowledgeService)(nil)

var errEmptyQuery = errors.New("query must not be empty")

// normalizeQuery trims surrounding whitespace; matching stays case-sensitive
// because the chat layer already canonicalizes casing.
func normalizeQuery(q string) string {
	return strings.TrimSpace(q)
}

// Lookup returns the cached entry for a query, (nil, nil) on a miss.
func (s *KnowledgeService) Lookup(ctx context.Context, query string) (*models.KnowledgeEntry, error) {
	query = normalizeQuery(query)
	if query == "" {
		return nil, errEmptyQuery
	}
	return s.knowledgeRepo.Get(ctx, query)
}

// Save upserts a query/response pair.
func (s *KnowledgeService) Save(ctx context.Context, query, response, contextText string) error {
	query = normalizeQuery(query)
	if query == "" {
		return errEmptyQuery
	}
	return s.knowledgeRepo.Put(ctx, models.KnowledgeEntry{
		Query:    query,
		Response: response,
		Context:  contextText,
	})
}
