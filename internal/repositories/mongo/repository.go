package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type repository struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewRepository(client *mongo.Client, database string) repositories.Repository {
	return &repository{client: client, db: client.Database(database)}
}

func (r *repository) Gradebook() repositories.GradebookRepository {
	return &GradebookMongo{collection: r.db.Collection(ScoreCollection)}
}

func (r *repository) Metadata() repositories.MetadataRepository {
	return &MetadataMongo{collection: r.db.Collection(MetadataCollection)}
}

func (r *repository) Close() error {
	return r.client.Disconnect(context.Background())
}

// EnsureIndexes creates the unique (studentId, subject) index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ScoreCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "subject", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create score index: %w", err)
	}
	return nil
}

type GradebookMongo struct {
	collection *mongo.Collection
}

func rowFilter(studentID string, subject models.SubjectCode) bson.M {
	return bson.M{"studentId": studentID, "subject": string(subject)}
}

func (g *GradebookMongo) find(ctx context.Context, filter bson.M) ([]repositories.Row, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rowIndex", Value: 1}})
	cursor, err := g.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []scoreDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]repositories.Row, len(docs))
	for i, doc := range docs {
		rows[i] = doc.toRow()
	}
	return rows, nil
}

func (g *GradebookMongo) ListStudents(ctx context.Context) ([]*models.Student, error) {
	rows, err := g.find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list score documents: %w", err)
	}
	return repositories.AssembleStudents(rows), nil
}

func (g *GradebookMongo) GetStudent(ctx context.Context, studentID string) (*models.Student, error) {
	rows, err := g.find(ctx, bson.M{"studentId": studentID})
	if err != nil {
		return nil, fmt.Errorf("failed to get student documents: %w", err)
	}
	return repositories.FindStudent(repositories.AssembleStudents(rows), studentID)
}

func (g *GradebookMongo) GetRecord(ctx context.Context, studentID string, subject models.SubjectCode) (models.SubjectRecord, error) {
	var doc scoreDocument
	err := g.collection.FindOne(ctx, rowFilter(studentID, subject)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SubjectRecord{}, repositories.ErrRecordNotFound
		}
		return models.SubjectRecord{}, fmt.Errorf("failed to get score document: %w", err)
	}
	return doc.toRow().Record, nil
}

func (g *GradebookMongo) UpdateField(ctx context.Context, update models.FieldUpdate) error {
	path, value, err := fieldPath(update)
	if err != nil {
		return err
	}

	result, err := g.collection.UpdateOne(ctx,
		rowFilter(update.StudentID, update.Subject),
		bson.M{"$set": bson.M{path: value}},
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

// Redeem matches only documents with a positive balance, so the check and
// both counters change in one server-side update.
func (g *GradebookMongo) Redeem(ctx context.Context, studentID string, subject models.SubjectCode) (bool, error) {
	filter := rowFilter(studentID, subject)
	filter["rewardRights"] = bson.M{"$gt": 0}

	result, err := g.collection.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{
			"rewardRights":  -1,
			"redeemedCount": 1,
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to redeem reward: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

// Seed upserts rows keyed on (studentId, subject), inserting only missing ones.
func (g *GradebookMongo) Seed(ctx context.Context, rows []repositories.Row) error {
	if len(rows) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(rows))
	for _, row := range rows {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(rowFilter(row.StudentID, row.Subject)).
			SetUpdate(bson.M{"$setOnInsert": newScoreDocument(row)}).
			SetUpsert(true))
	}
	_, err := g.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

type MetadataMongo struct {
	collection *mongo.Collection
}

func (m *MetadataMongo) GetMetadata(ctx context.Context, subject models.SubjectCode) (*models.SubjectMetadata, error) {
	var doc metadataDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": string(subject)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get subject metadata: %w", err)
	}
	meta := doc.Data.Normalize()
	return &meta, nil
}

func (m *MetadataMongo) UpdateMetadata(ctx context.Context, subject models.SubjectCode, meta models.SubjectMetadata) error {
	doc := metadataDocument{Subject: string(subject), Data: meta.Normalize()}
	_, err := m.collection.ReplaceOne(ctx,
		bson.M{"_id": string(subject)},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to update subject metadata: %w", err)
	}
	return nil
}
