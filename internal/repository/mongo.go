package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Generic single-collection helpers shared by the repositories. Every
// helper maps mongo.ErrNoDocuments (or a zero match count) to ErrNotFound.

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter any) ([]T, error) {
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findByIDs[T any](ctx context.Context, coll *mongo.Collection, ids []bson.ObjectID) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	return findMany[T](ctx, coll, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
}

// updateByID applies $set and returns the document after the update. An
// empty set performs no write and returns the current document.
func updateByID[T any](ctx context.Context, coll *mongo.Collection, id bson.ObjectID, set bson.D) (*T, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	if len(set) == 0 {
		return findOne[T](ctx, coll, filter)
	}
	var out T
	err := coll.FindOneAndUpdate(ctx, filter,
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id bson.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// modifyArray runs $push or $pull of value on the array field of one
// document.
func modifyArray(ctx context.Context, coll *mongo.Collection, op string, id bson.ObjectID, field string, value bson.ObjectID) error {
	res, err := coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: op, Value: bson.D{{Key: field, Value: value}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// setIf appends key=*v when v is non-nil.
func setIf[V any](d bson.D, key string, v *V) bson.D {
	if v == nil {
		return d
	}
	return append(d, bson.E{Key: key, Value: *v})
}
