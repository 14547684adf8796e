package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/miapp/secure-notes/internal/core/domain"
)

// NoteRepository stores notes. Every filter includes owner_id; updates and
// deletes are single-document operations matched on (_id, owner_id).
type NoteRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewNoteRepository(db *mongo.Database) *NoteRepository {
	return &NoteRepository{db: db, coll: db.Collection(collectionNotes)}
}

type noteDoc struct {
	ID        int64     `bson:"_id"`
	OwnerID   int64     `bson:"owner_id"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d noteDoc) toDomain() *domain.Note {
	return &domain.Note{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func ownedBy(ownerID, noteID int64) bson.M {
	return bson.M{"_id": noteID, "owner_id": ownerID}
}

func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, mapError("list notes", err)
	}
	defer cursor.Close(ctx)

	var docs []noteDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError("list notes", err)
	}

	out := make([]*domain.Note, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *NoteRepository) Get(ctx context.Context, ownerID, noteID int64) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc noteDoc
	if err := r.coll.FindOne(ctx, ownedBy(ownerID, noteID)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, mapError("get note", err)
	}
	return doc.toDomain(), nil
}

func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, collectionNotes)
	if err != nil {
		return nil, mapError("create note", err)
	}

	doc := noteDoc{
		ID:        id,
		OwnerID:   note.OwnerID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: mongoTime(note.CreatedAt),
		UpdatedAt: mongoTime(note.UpdatedAt),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, mapError("create note", err)
	}
	return doc.toDomain(), nil
}

func (r *NoteRepository) Update(ctx context.Context, ownerID, noteID int64, title, content string, updatedAt time.Time) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":      title,
		"content":    content,
		"updated_at": mongoTime(updatedAt),
	}}

	var doc noteDoc
	err := r.coll.FindOneAndUpdate(ctx, ownedBy(ownerID, noteID), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, mapError("update note", err)
	}
	return doc.toDomain(), nil
}

func (r *NoteRepository) Delete(ctx context.Context, ownerID, noteID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, ownedBy(ownerID, noteID))
	if err != nil {
		return false, mapError("delete note", err)
	}
	return res.DeletedCount > 0, nil
}
