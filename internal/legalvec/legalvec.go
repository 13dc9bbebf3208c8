// Package legalvec backs semantic search over LegalFact embeddings for
// build_legal_context; search_legal uses corpus's SQL search instead.
// Facts enter the collection through CreateCollection and Insert, which
// the caseload loader does not call. Search compares against a topic
// string's embedding; when the vector client is unavailable or returns
// nothing, callers fall back to corpus's substring search (mirrors the
// teacher's SerpAPI → Google search fallback shape).
package legalvec

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/pkg/logger"
)

type Client struct {
	milvus         client.Client
	collectionName string
	vectorDim      int
}

type Fact struct {
	CitationToken string
	Embedding     []float32
	Category      string
	Jurisdiction  string
	Title         string
	Text          string
}

type SearchResult struct {
	CitationToken string
	Category      string
	Jurisdiction  string
	Title         string
	Text          string
	Score         float32
}

func NewClient(endpoint, apiKey, collectionName string, vectorDim int) (*Client, error) {
	c, err := client.NewGrpcClient(context.Background(), endpoint)
	if err != nil {
		return nil, fmt.Errorf("create milvus client: %w", err)
	}

	logger.Info("legal vector client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{milvus: c, collectionName: collectionName, vectorDim: vectorDim}, nil
}

func (c *Client) Close() error {
	return c.milvus.Close()
}

func (c *Client) CreateCollection(ctx context.Context) error {
	has, err := c.milvus.HasCollection(ctx, c.collectionName)
	if err != nil {
		return fmt.Errorf("check legal fact collection: %w", err)
	}
	if has {
		logger.Info("legal fact collection already exists", zap.String("collection", c.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: c.collectionName,
		Description:    "legal fact embeddings (statutes, amendments, landmark cases)",
		Fields: []*entity.Field{
			{Name: "citation_token", DataType: entity.FieldTypeVarChar, PrimaryKey: true, AutoID: false,
				TypeParams: map[string]string{"max_length": "128"}},
			{Name: "embedding", DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": fmt.Sprintf("%d", c.vectorDim)}},
			{Name: "category", DataType: entity.FieldTypeVarChar, TypeParams: map[string]string{"max_length": "64"}},
			{Name: "jurisdiction", DataType: entity.FieldTypeVarChar, TypeParams: map[string]string{"max_length": "64"}},
			{Name: "title", DataType: entity.FieldTypeVarChar, TypeParams: map[string]string{"max_length": "256"}},
			{Name: "text", DataType: entity.FieldTypeVarChar, TypeParams: map[string]string{"max_length": "4096"}},
		},
	}

	if err := c.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("create legal fact collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.L2, 1024)
	if err != nil {
		return fmt.Errorf("create legal fact index params: %w", err)
	}
	if err := c.milvus.CreateIndex(ctx, c.collectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("create legal fact index: %w", err)
	}
	if err := c.milvus.LoadCollection(ctx, c.collectionName, false); err != nil {
		return fmt.Errorf("load legal fact collection: %w", err)
	}

	logger.Info("legal fact collection created and loaded", zap.String("collection", c.collectionName))
	return nil
}

func (c *Client) Insert(ctx context.Context, facts []Fact) error {
	if len(facts) == 0 {
		return nil
	}

	tokens := make([]string, len(facts))
	embeddings := make([][]float32, len(facts))
	categories := make([]string, len(facts))
	jurisdictions := make([]string, len(facts))
	titles := make([]string, len(facts))
	texts := make([]string, len(facts))

	for i, f := range facts {
		tokens[i] = f.CitationToken
		embeddings[i] = f.Embedding
		categories[i] = f.Category
		jurisdictions[i] = f.Jurisdiction
		titles[i] = f.Title
		texts[i] = f.Text
	}

	_, err := c.milvus.Insert(ctx, c.collectionName, "",
		entity.NewColumnVarChar("citation_token", tokens),
		entity.NewColumnFloatVector("embedding", c.vectorDim, embeddings),
		entity.NewColumnVarChar("category", categories),
		entity.NewColumnVarChar("jurisdiction", jurisdictions),
		entity.NewColumnVarChar("title", titles),
		entity.NewColumnVarChar("text", texts),
	)
	if err != nil {
		return fmt.Errorf("insert legal facts: %w", err)
	}

	if err := c.milvus.Flush(ctx, c.collectionName, false); err != nil {
		return fmt.Errorf("flush legal facts: %w", err)
	}

	logger.Info("legal facts inserted into vector store", zap.Int("count", len(facts)))
	return nil
}

func (c *Client) Search(ctx context.Context, queryEmbedding []float32, topK int, jurisdiction string) ([]SearchResult, error) {
	expr := ""
	if jurisdiction != "" {
		expr = fmt.Sprintf(`jurisdiction == "%s"`, jurisdiction)
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := c.milvus.Search(
		ctx, c.collectionName, []string{}, expr,
		[]string{"citation_token", "category", "jurisdiction", "title", "text"},
		[]entity.Vector{entity.FloatVector(queryEmbedding)},
		"embedding", entity.L2, topK, sp,
	)
	if err != nil {
		return nil, fmt.Errorf("search legal facts: %w", err)
	}

	var results []SearchResult
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			token, _ := sr.Fields.GetColumn("citation_token").Get(i)
			category, _ := sr.Fields.GetColumn("category").Get(i)
			jur, _ := sr.Fields.GetColumn("jurisdiction").Get(i)
			title, _ := sr.Fields.GetColumn("title").Get(i)
			text, _ := sr.Fields.GetColumn("text").Get(i)

			results = append(results, SearchResult{
				CitationToken: token.(string),
				Category:      category.(string),
				Jurisdiction:  jur.(string),
				Title:         title.(string),
				Text:          text.(string),
				Score:         sr.Scores[i],
			})
		}
	}

	logger.Info("legal vector search completed", zap.Int("topK", topK), zap.Int("results", len(results)))
	return results, nil
}
