package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// ResumeChunk is one embedded piece of an applicant's resume.
type ResumeChunk struct {
	Index     int
	Text      string
	Embedding []float32
}

// VectorMatch is a single chunk returned by a similarity query.
type VectorMatch struct {
	ApplicantID uuid.UUID
	Score       float32
	Text        string
}

type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertApplicant(ctx context.Context, applicantID uuid.UUID, jobID *uuid.UUID, chunks []ResumeChunk) error
	Search(ctx context.Context, embedding []float32, jobID *uuid.UUID, limit int) ([]VectorMatch, error)
	DeleteApplicant(ctx context.Context, applicantID uuid.UUID) error
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string, vectorSize uint64) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
	}, nil
}

func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists\n", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertApplicant replaces every point stored for the applicant. Point IDs
// are derived from the applicant ID and chunk index so re-indexing is stable.
func (q *qdrantService) UpsertApplicant(ctx context.Context, applicantID uuid.UUID, jobID *uuid.UUID, chunks []ResumeChunk) error {
	if err := q.DeleteApplicant(ctx, applicantID); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	jobValue := ""
	if jobID != nil {
		jobValue = jobID.String()
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		pointID := uuid.NewSHA1(applicantID, []byte(strconv.Itoa(chunk.Index)))
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID.String()),
			Vectors: qdrant.NewVectors(chunk.Embedding...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"applicant_id":   applicantID.String(),
				"job_posting_id": jobValue,
				"chunk_index":    chunk.Index,
				"text":           chunk.Text,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

func (q *qdrantService) Search(ctx context.Context, embedding []float32, jobID *uuid.UUID, limit int) ([]VectorMatch, error) {
	var filter *qdrant.Filter
	if jobID != nil {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("job_posting_id", jobID.String()),
			},
		}
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	matches := make([]VectorMatch, 0, len(points))
	for _, point := range points {
		applicantID, err := uuid.Parse(payloadString(point.Payload, "applicant_id"))
		if err != nil {
			continue
		}
		matches = append(matches, VectorMatch{
			ApplicantID: applicantID,
			Score:       point.Score,
			Text:        payloadString(point.Payload, "text"),
		})
	}

	return matches, nil
}

func (q *qdrantService) DeleteApplicant(ctx context.Context, applicantID uuid.UUID) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("applicant_id", applicantID.String()),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete applicant points: %w", err)
	}

	return nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	value, ok := payload[key]
	if !ok {
		return ""
	}
	if val, ok := value.GetKind().(*qdrant.Value_StringValue); ok {
		return val.StringValue
	}
	return ""
}
