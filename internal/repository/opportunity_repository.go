package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/iliyamo/crm-service/internal/database"
	"github.com/iliyamo/crm-service/internal/model"
)

type OpportunityRepo struct{ coll *mongo.Collection }

func NewOpportunityRepo(db *mongo.Database) *OpportunityRepo {
	return &OpportunityRepo{coll: db.Collection(database.CollectionOpportunities)}
}

func (r *OpportunityRepo) Create(ctx context.Context, o *model.Opportunity) error {
	o.ID = bson.NewObjectID()
	_, err := r.coll.InsertOne(ctx, o)
	return err
}

func (r *OpportunityRepo) List(ctx context.Context, f model.OpportunityFilter) ([]model.Opportunity, error) {
	return findMany[model.Opportunity](ctx, r.coll, opportunityFilter(f))
}

func (r *OpportunityRepo) GetByID(ctx context.Context, id bson.ObjectID) (*model.Opportunity, error) {
	return findOne[model.Opportunity](ctx, r.coll, bson.D{{Key: "_id", Value: id}})
}

func (r *OpportunityRepo) GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.Opportunity, error) {
	return findByIDs[model.Opportunity](ctx, r.coll, ids)
}

func (r *OpportunityRepo) Update(ctx context.Context, id bson.ObjectID, p model.OpportunityPatch) (*model.Opportunity, error) {
	return updateByID[model.Opportunity](ctx, r.coll, id, opportunitySet(p))
}

func (r *OpportunityRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func opportunityFilter(f model.OpportunityFilter) bson.D {
	d := bson.D{}
	if f.Lead != nil {
		d = append(d, bson.E{Key: "lead", Value: *f.Lead})
	}
	if f.Stage != "" {
		d = append(d, bson.E{Key: "stage", Value: f.Stage})
	}
	return d
}

func opportunitySet(p model.OpportunityPatch) bson.D {
	var d bson.D
	d = setIf(d, "name", p.Name)
	d = setIf(d, "value", p.Value)
	d = setIf(d, "stage", p.Stage)
	d = setIf(d, "expectedCloseDate", p.ExpectedCloseDate)
	d = setIf(d, "lead", p.Lead)
	return d
}
