package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/iliyamo/crm-service/internal/database"
	"github.com/iliyamo/crm-service/internal/model"
)

type CustomerRepo struct{ coll *mongo.Collection }

func NewCustomerRepo(db *mongo.Database) *CustomerRepo {
	return &CustomerRepo{coll: db.Collection(database.CollectionCustomers)}
}

func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	c.ID = bson.NewObjectID()
	if c.Interactions == nil {
		c.Interactions = []bson.ObjectID{}
	}
	_, err := r.coll.InsertOne(ctx, c)
	return err
}

func (r *CustomerRepo) List(ctx context.Context) ([]model.Customer, error) {
	return findMany[model.Customer](ctx, r.coll, bson.D{})
}

func (r *CustomerRepo) GetByID(ctx context.Context, id bson.ObjectID) (*model.Customer, error) {
	return findOne[model.Customer](ctx, r.coll, bson.D{{Key: "_id", Value: id}})
}

func (r *CustomerRepo) GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.Customer, error) {
	return findByIDs[model.Customer](ctx, r.coll, ids)
}

func (r *CustomerRepo) Update(ctx context.Context, id bson.ObjectID, in model.CustomerInput) (*model.Customer, error) {
	return updateByID[model.Customer](ctx, r.coll, id, customerSet(in))
}

func (r *CustomerRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

// AddInteraction appends interactionID to the customer's interactions.
func (r *CustomerRepo) AddInteraction(ctx context.Context, customerID, interactionID bson.ObjectID) error {
	return modifyArray(ctx, r.coll, "$push", customerID, "interactions", interactionID)
}

func customerSet(in model.CustomerInput) bson.D {
	var d bson.D
	d = setIf(d, "name", in.Name)
	d = setIf(d, "contactInfo", in.ContactInfo)
	d = setIf(d, "company", in.Company)
	d = setIf(d, "address", in.Address)
	d = setIf(d, "industry", in.Industry)
	d = setIf(d, "notes", in.Notes)
	return d
}
