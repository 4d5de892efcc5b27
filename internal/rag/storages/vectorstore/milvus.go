package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"helperbot/internal/rag/interfaces"
	"helperbot/internal/rag/schema"
	"helperbot/pkg/logger"
)

const (
	// Schema fields of the chunk collection.
	FieldID        = "id"
	FieldChunk     = "chunk"
	FieldSource    = "source"
	FieldEmbedding = "embedding"

	maxChunkLength  = 65535
	maxSourceLength = 2048
)

// MilvusStore implements the VectorStore interface on a Milvus collection.
// Each namespace maps to one partition; Replace drops and recreates the
// partition so a fresh ingestion run fully supersedes the previous one and
// stale pages cannot resurface in retrieval.
type MilvusStore struct {
	log        *logger.Logger
	client     client.Client
	collection string
	dim        int
}

// NewMilvusStore connects to Milvus and returns a store bound to the given
// collection. The client is constructed once and reused across requests.
func NewMilvusStore(ctx context.Context, address, collection string, dim int, log *logger.Logger) (*MilvusStore, error) {
	c, err := client.NewClient(ctx, client.Config{Address: address})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Milvus at %s: %w", address, err)
	}
	return &MilvusStore{
		log:        log,
		client:     c,
		collection: collection,
		dim:        dim,
	}, nil
}

// Close releases the Milvus connection.
func (s *MilvusStore) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// EnsureCollection creates the chunk collection and its vector index if they
// do not exist yet. Safe to call on every ingestion run.
func (s *MilvusStore) EnsureCollection(ctx context.Context) error {
	has, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %q: %w", s.collection, err)
	}
	if has {
		return nil
	}

	sch := entity.NewSchema().
		WithName(s.collection).
		WithDescription("Site page chunks with embeddings, partitioned by namespace.").
		WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true)).
		WithField(entity.NewField().WithName(FieldChunk).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxChunkLength)).
		WithField(entity.NewField().WithName(FieldSource).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxSourceLength)).
		WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))

	if err := s.client.CreateCollection(ctx, sch, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection %q: %w", s.collection, err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.L2, 128)
	if err != nil {
		return fmt.Errorf("failed to build index definition: %w", err)
	}
	if err := s.client.CreateIndex(ctx, s.collection, FieldEmbedding, idx, false); err != nil {
		return fmt.Errorf("failed to create index on %q: %w", s.collection, err)
	}

	s.log.Info(fmt.Sprintf("Created collection %q (dim=%d)", s.collection, s.dim))
	return nil
}

// Replace atomically swaps the contents of a namespace: the backing
// partition is dropped, recreated, and filled with the given documents.
// Concurrent Replace calls on the same namespace are unsafe; last writer wins.
func (s *MilvusStore) Replace(ctx context.Context, namespace string, docs []*schema.Document) error {
	has, err := s.client.HasPartition(ctx, s.collection, namespace)
	if err != nil {
		return fmt.Errorf("failed to check partition %q: %w", namespace, err)
	}
	if has {
		// A loaded partition cannot be dropped; release first.
		if err := s.client.ReleaseCollection(ctx, s.collection); err != nil {
			s.log.Warn(fmt.Sprintf("Release before drop failed: %v", err))
		}
		if err := s.client.DropPartition(ctx, s.collection, namespace); err != nil {
			return fmt.Errorf("failed to drop partition %q: %w", namespace, err)
		}
		s.log.Info(fmt.Sprintf("Cleared previous contents of namespace %q", namespace))
	}
	if err := s.client.CreatePartition(ctx, s.collection, namespace); err != nil {
		return fmt.Errorf("failed to create partition %q: %w", namespace, err)
	}

	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	texts := make([]string, len(docs))
	sources := make([]string, len(docs))
	vectors := make([][]float32, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.New().String()
		}
		ids[i] = doc.ID
		texts[i] = doc.Text
		sources[i] = doc.Source()
		vectors[i] = doc.Embedding
	}

	idCol := entity.NewColumnVarChar(FieldID, ids)
	chunkCol := entity.NewColumnVarChar(FieldChunk, texts)
	sourceCol := entity.NewColumnVarChar(FieldSource, sources)
	vectorCol := entity.NewColumnFloatVector(FieldEmbedding, s.dim, vectors)

	s.log.Info(fmt.Sprintf("Inserting %d chunks into namespace %q", len(docs), namespace))
	if _, err := s.client.Insert(ctx, s.collection, namespace, idCol, chunkCol, sourceCol, vectorCol); err != nil {
		return fmt.Errorf("failed to insert chunks into Milvus: %w", err)
	}
	if err := s.client.Flush(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to flush collection %q: %w", s.collection, err)
	}
	return nil
}

// Query performs a vector search restricted to the namespace partition and
// returns up to topK chunks, most similar first.
func (s *MilvusStore) Query(ctx context.Context, namespace string, embedding []float32, topK int) ([]*schema.Document, error) {
	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return nil, fmt.Errorf("failed to load collection %q: %w", s.collection, err)
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(10)
	outputFields := []string{FieldID, FieldChunk, FieldSource}

	results, err := s.client.Search(
		ctx, s.collection, []string{namespace}, "", outputFields,
		[]entity.Vector{entity.FloatVector(embedding)},
		FieldEmbedding, entity.L2, topK, sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search namespace %q: %w", namespace, err)
	}

	var docs []*schema.Document
	for _, res := range results {
		idData := varCharData(res.Fields, FieldID)
		chunkData := varCharData(res.Fields, FieldChunk)
		sourceData := varCharData(res.Fields, FieldSource)
		if idData == nil {
			s.log.Warn("Search result is missing the ID field, skipping.")
			continue
		}

		for i := 0; i < res.ResultCount; i++ {
			doc := &schema.Document{
				ID: idData[i],
				Metadata: map[string]interface{}{
					schema.MetadataKeyScore: res.Scores[i],
				},
			}
			if chunkData != nil {
				doc.Text = chunkData[i]
			}
			if sourceData != nil {
				doc.Metadata[schema.MetadataKeySource] = sourceData[i]
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func varCharData(fields []entity.Column, name string) []string {
	for _, field := range fields {
		if field.Name() != name {
			continue
		}
		if col, ok := field.(*entity.ColumnVarChar); ok {
			return col.Data()
		}
	}
	return nil
}

// compile-time check to ensure MilvusStore implements the VectorStore interface
var _ interfaces.VectorStore = (*MilvusStore)(nil)
