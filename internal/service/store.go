package service

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/crm-service/internal/model"
)

// The store interfaces below are implemented by the Mongo repositories in
// internal/repository. Lookups by id return repository.ErrNotFound when the
// document is absent; GetByIDs silently skips ids that do not resolve.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id bson.ObjectID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.User, error)
	ListExcept(ctx context.Context, id bson.ObjectID) ([]model.User, error)
	Update(ctx context.Context, id bson.ObjectID, p model.UserPatch) (*model.User, error)
}

type CustomerStore interface {
	Create(ctx context.Context, c *model.Customer) error
	List(ctx context.Context) ([]model.Customer, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*model.Customer, error)
	GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.Customer, error)
	Update(ctx context.Context, id bson.ObjectID, in model.CustomerInput) (*model.Customer, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	AddInteraction(ctx context.Context, customerID, interactionID bson.ObjectID) error
}

type InteractionStore interface {
	Create(ctx context.Context, i *model.Interaction) error
	List(ctx context.Context, f model.InteractionFilter) ([]model.Interaction, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*model.Interaction, error)
	GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.Interaction, error)
	Update(ctx context.Context, id bson.ObjectID, p model.InteractionPatch) (*model.Interaction, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

type LeadStore interface {
	Create(ctx context.Context, l *model.Lead) error
	List(ctx context.Context, f model.LeadFilter) ([]model.Lead, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*model.Lead, error)
	GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.Lead, error)
	Update(ctx context.Context, id bson.ObjectID, p model.LeadPatch) (*model.Lead, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	AddOpportunity(ctx context.Context, leadID, opportunityID bson.ObjectID) error
	RemoveOpportunity(ctx context.Context, leadID, opportunityID bson.ObjectID) error
}

type OpportunityStore interface {
	Create(ctx context.Context, o *model.Opportunity) error
	List(ctx context.Context, f model.OpportunityFilter) ([]model.Opportunity, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*model.Opportunity, error)
	GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]model.Opportunity, error)
	Update(ctx context.Context, id bson.ObjectID, p model.OpportunityPatch) (*model.Opportunity, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}
