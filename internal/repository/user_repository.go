package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/iliyamo/crm-service/internal/database"
	"github.com/iliyamo/crm-service/internal/model"
)

// UserRepo persists accounts in the users collection. Email is unique
// through the index created by database.EnsureIndexes.
type UserRepo struct{ coll *mongo.Collection }

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(database.CollectionUsers)}
}

// Create inserts u and assigns its id.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = bson.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, bson.D{{Key: "_id", Value: id}})
}

// GetByEmail expects an already normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepo) GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.User, error) {
	return findByIDs[model.User](ctx, r.coll, ids)
}

// ListExcept returns all users but the one with the given id.
func (r *UserRepo) ListExcept(ctx context.Context, id bson.ObjectID) ([]model.User, error) {
	return findMany[model.User](ctx, r.coll, bson.D{{Key: "_id", Value: bson.D{{Key: "$ne", Value: id}}}})
}

func (r *UserRepo) Update(ctx context.Context, id bson.ObjectID, p model.UserPatch) (*model.User, error) {
	set := userSet(p)
	if len(set) > 0 {
		set = append(set, bson.E{Key: "updatedAt", Value: time.Now().UTC()})
	}
	u, err := updateByID[model.User](ctx, r.coll, id, set)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return nil, ErrEmailExists
	}
	return u, err
}

func userSet(p model.UserPatch) bson.D {
	var d bson.D
	d = setIf(d, "name", p.Name)
	d = setIf(d, "email", p.Email)
	d = setIf(d, "password", p.PasswordHash)
	d = setIf(d, "role", p.Role)
	return d
}
