package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/iliyamo/crm-service/internal/database"
	"github.com/iliyamo/crm-service/internal/model"
)

type LeadRepo struct{ coll *mongo.Collection }

func NewLeadRepo(db *mongo.Database) *LeadRepo {
	return &LeadRepo{coll: db.Collection(database.CollectionLeads)}
}

func (r *LeadRepo) Create(ctx context.Context, l *model.Lead) error {
	l.ID = bson.NewObjectID()
	if l.Opportunities == nil {
		l.Opportunities = []bson.ObjectID{}
	}
	_, err := r.coll.InsertOne(ctx, l)
	return err
}

func (r *LeadRepo) List(ctx context.Context, f model.LeadFilter) ([]model.Lead, error) {
	return findMany[model.Lead](ctx, r.coll, leadFilter(f))
}

func (r *LeadRepo) GetByID(ctx context.Context, id bson.ObjectID) (*model.Lead, error) {
	return findOne[model.Lead](ctx, r.coll, bson.D{{Key: "_id", Value: id}})
}

func (r *LeadRepo) GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.Lead, error) {
	return findByIDs[model.Lead](ctx, r.coll, ids)
}

func (r *LeadRepo) Update(ctx context.Context, id bson.ObjectID, p model.LeadPatch) (*model.Lead, error) {
	return updateByID[model.Lead](ctx, r.coll, id, leadSet(p))
}

func (r *LeadRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *LeadRepo) AddOpportunity(ctx context.Context, leadID, opportunityID bson.ObjectID) error {
	return modifyArray(ctx, r.coll, "$push", leadID, "opportunities", opportunityID)
}

func (r *LeadRepo) RemoveOpportunity(ctx context.Context, leadID, opportunityID bson.ObjectID) error {
	return modifyArray(ctx, r.coll, "$pull", leadID, "opportunities", opportunityID)
}

// leadFilter matches Opportunity against array membership.
func leadFilter(f model.LeadFilter) bson.D {
	d := bson.D{}
	if f.Status != "" {
		d = append(d, bson.E{Key: "status", Value: f.Status})
	}
	if f.SalesRepresentative != nil {
		d = append(d, bson.E{Key: "salesRepresentative", Value: *f.SalesRepresentative})
	}
	if f.Opportunity != nil {
		d = append(d, bson.E{Key: "opportunities", Value: *f.Opportunity})
	}
	return d
}

func leadSet(p model.LeadPatch) bson.D {
	var d bson.D
	d = setIf(d, "name", p.Name)
	d = setIf(d, "contactInfo", p.ContactInfo)
	d = setIf(d, "source", p.Source)
	d = setIf(d, "status", p.Status)
	d = setIf(d, "salesRepresentative", p.SalesRepresentative)
	d = setIf(d, "opportunities", p.Opportunities)
	return d
}
