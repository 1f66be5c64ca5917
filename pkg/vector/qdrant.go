package vector

import (
	"context"
	"fmt"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"github.com/ternarybob/arbor"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/andrew/support-rag/pkg/models"
)

// QdrantStore implements Store against a Qdrant server over gRPC.
type QdrantStore struct {
	conn        *grpc.ClientConn
	collections qdrantclient.CollectionsClient
	points      qdrantclient.PointsClient
	collection  string
	logger      arbor.ILogger
}

// NewQdrantStore connects to Qdrant at addr (host:port of the gRPC endpoint)
// and operates on the named collection.
func NewQdrantStore(addr, collection string, logger arbor.ILogger) (*QdrantStore, error) {
	conn, err := grpc.Dial(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to Qdrant at %s: %v", ErrUnavailable, addr, err)
	}

	return &QdrantStore{
		conn:        conn,
		collections: qdrantclient.NewCollectionsClient(conn),
		points:      qdrantclient.NewPointsClient(conn),
		collection:  collection,
		logger:      logger,
	}, nil
}

// EnsureCollection creates the collection for the given vector dimension if
// it does not exist. With recreate set, an existing collection is dropped
// first so ingestion starts from an empty index.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dimension int, recreate bool) error {
	collections, err := s.collections.List(ctx, &qdrantclient.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("%w: failed to list collections: %v", ErrUnavailable, err)
	}

	exists := false
	for _, col := range collections.GetCollections() {
		if col.GetName() == s.collection {
			exists = true
			break
		}
	}

	if exists && recreate {
		s.logger.Info().Str("collection", s.collection).Msg("Dropping existing collection")
		if _, err := s.collections.Delete(ctx, &qdrantclient.DeleteCollection{
			CollectionName: s.collection,
		}); err != nil {
			return fmt.Errorf("%w: failed to delete collection: %v", ErrUnavailable, err)
		}
		exists = false
	}

	if !exists {
		s.logger.Info().Str("collection", s.collection).Int("dimension", dimension).Msg("Creating collection")
		createReq := &qdrantclient.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: &qdrantclient.VectorsConfig{
				Config: &qdrantclient.VectorsConfig_Params{
					Params: &qdrantclient.VectorParams{
						Size:     uint64(dimension),
						Distance: qdrantclient.Distance_Cosine,
					},
				},
			},
		}
		if _, err := s.collections.Create(ctx, createReq); err != nil {
			return fmt.Errorf("%w: failed to create collection: %v", ErrUnavailable, err)
		}
	}

	return nil
}

// Upsert writes a single point; an existing point with the same id is
// replaced.
func (s *QdrantStore) Upsert(ctx context.Context, id string, vector []float32, chunk models.Chunk) error {
	point := &qdrantclient.PointStruct{
		Id: &qdrantclient.PointId{
			PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: id},
		},
		Vectors: &qdrantclient.Vectors{
			VectorsOptions: &qdrantclient.Vectors_Vector{
				Vector: &qdrantclient.Vector{Data: vector},
			},
		},
		Payload: map[string]*qdrantclient.Value{
			"text":        {Kind: &qdrantclient.Value_StringValue{StringValue: chunk.Content}},
			"source":      {Kind: &qdrantclient.Value_StringValue{StringValue: chunk.Source}},
			"chunk_index": {Kind: &qdrantclient.Value_IntegerValue{IntegerValue: int64(chunk.Index)}},
		},
	}

	_, err := s.points.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*qdrantclient.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upsert point: %v", ErrUnavailable, err)
	}
	return nil
}

// Search runs a nearest-neighbor query and maps the scored points back into
// search results.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, limit int, threshold float32) ([]models.SearchResult, error) {
	searchReq := &qdrantclient.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Include{
				Include: &qdrantclient.PayloadIncludeSelector{
					Fields: []string{"text", "source", "chunk_index"},
				},
			},
		},
	}
	if threshold > 0 {
		searchReq.ScoreThreshold = &threshold
	}

	resp, err := s.points.Search(ctx, searchReq)
	if err != nil {
		return nil, fmt.Errorf("%w: search failed: %v", ErrUnavailable, err)
	}

	results := make([]models.SearchResult, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		payload := point.GetPayload()
		results = append(results, models.SearchResult{
			Chunk: models.Chunk{
				Source:  payload["source"].GetStringValue(),
				Index:   int(payload["chunk_index"].GetIntegerValue()),
				Content: payload["text"].GetStringValue(),
			},
			Score: point.GetScore(),
		})
	}
	return results, nil
}

// Count reports the number of points stored in the collection.
func (s *QdrantStore) Count(ctx context.Context) (int64, error) {
	resp, err := s.points.Count(ctx, &qdrantclient.CountPoints{
		CollectionName: s.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count failed: %v", ErrUnavailable, err)
	}
	return int64(resp.GetResult().GetCount()), nil
}

// Close tears down the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.conn.Close()
}
