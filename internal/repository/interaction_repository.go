package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/iliyamo/crm-service/internal/database"
	"github.com/iliyamo/crm-service/internal/model"
)

type InteractionRepo struct{ coll *mongo.Collection }

func NewInteractionRepo(db *mongo.Database) *InteractionRepo {
	return &InteractionRepo{coll: db.Collection(database.CollectionInteractions)}
}

func (r *InteractionRepo) Create(ctx context.Context, i *model.Interaction) error {
	i.ID = bson.NewObjectID()
	_, err := r.coll.InsertOne(ctx, i)
	return err
}

func (r *InteractionRepo) List(ctx context.Context, f model.InteractionFilter) ([]model.Interaction, error) {
	return findMany[model.Interaction](ctx, r.coll, interactionFilter(f))
}

func (r *InteractionRepo) GetByID(ctx context.Context, id bson.ObjectID) (*model.Interaction, error) {
	return findOne[model.Interaction](ctx, r.coll, bson.D{{Key: "_id", Value: id}})
}

func (r *InteractionRepo) GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.Interaction, error) {
	return findByIDs[model.Interaction](ctx, r.coll, ids)
}

func (r *InteractionRepo) Update(ctx context.Context, id bson.ObjectID, p model.InteractionPatch) (*model.Interaction, error) {
	return updateByID[model.Interaction](ctx, r.coll, id, interactionSet(p))
}

func (r *InteractionRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func interactionFilter(f model.InteractionFilter) bson.D {
	d := bson.D{}
	if f.Type != "" {
		d = append(d, bson.E{Key: "type", Value: f.Type})
	}
	if f.Customer != nil {
		d = append(d, bson.E{Key: "customer", Value: *f.Customer})
	}
	return d
}

func interactionSet(p model.InteractionPatch) bson.D {
	var d bson.D
	d = setIf(d, "type", p.Type)
	d = setIf(d, "date", p.Date)
	d = setIf(d, "time", p.Time)
	d = setIf(d, "description", p.Description)
	return d
}
