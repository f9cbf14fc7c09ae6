package service

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/repository"
)

// CustomerService owns the customer lifecycle. Deleting a customer leaves
// its interactions in place; their back references dangle afterwards.
type CustomerService struct {
	customers    CustomerStore
	interactions InteractionStore
	events       notifier
}

func NewCustomerService(customers CustomerStore, interactions InteractionStore, pub EventPublisher) *CustomerService {
	return &CustomerService{customers: customers, interactions: interactions, events: notifier{pub: pub}}
}

func (s *CustomerService) Create(ctx context.Context, in model.CustomerInput) (*model.Customer, error) {
	if r := model.ValidateCustomer(in, true); !r.OK() {
		return nil, invalid(r)
	}
	c := &model.Customer{
		Name:         *in.Name,
		ContactInfo:  deref(in.ContactInfo),
		Company:      deref(in.Company),
		Address:      deref(in.Address),
		Industry:     deref(in.Industry),
		Notes:        deref(in.Notes),
		Interactions: []bson.ObjectID{},
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create customer")
	}
	s.events.emit(ctx, "customer", "created", c.ID)
	return c, nil
}

// List returns every customer with its interactions resolved.
func (s *CustomerService) List(ctx context.Context) ([]model.CustomerDetail, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list customers")
	}
	var ids []bson.ObjectID
	for _, c := range customers {
		ids = append(ids, c.Interactions...)
	}
	byID, err := s.interactionIndex(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.CustomerDetail, 0, len(customers))
	for _, c := range customers {
		out = append(out, customerDetail(c, byID))
	}
	return out, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id string) (*model.CustomerDetail, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	byID, err := s.interactionIndex(ctx, c.Interactions)
	if err != nil {
		return nil, err
	}
	d := customerDetail(*c, byID)
	return &d, nil
}

func (s *CustomerService) Update(ctx context.Context, id string, in model.CustomerInput) (*model.Customer, error) {
	if r := model.ValidateCustomer(in, false); !r.OK() {
		return nil, invalid(r)
	}
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, NotFound("Customer not found")
	}
	c, err := s.customers.Update(ctx, oid, in)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Customer not found")
		}
		return nil, errors.Wrap(err, "update customer")
	}
	s.events.emit(ctx, "customer", "updated", c.ID)
	return c, nil
}

// Delete removes the customer document only.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	oid, ok := model.ParseID(id)
	if !ok {
		return NotFound("Customer not found")
	}
	if err := s.customers.Delete(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("Customer not found")
		}
		return errors.Wrap(err, "delete customer")
	}
	s.events.emit(ctx, "customer", "deleted", oid)
	return nil
}

func (s *CustomerService) load(ctx context.Context, id string) (*model.Customer, error) {
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, NotFound("Customer not found")
	}
	c, err := s.customers.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Customer not found")
		}
		return nil, errors.Wrap(err, "load customer")
	}
	return c, nil
}

func (s *CustomerService) interactionIndex(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]model.Interaction, error) {
	byID := make(map[bson.ObjectID]model.Interaction, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	found, err := s.interactions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "resolve interactions")
	}
	for _, i := range found {
		byID[i.ID] = i
	}
	return byID, nil
}

func customerDetail(c model.Customer, byID map[bson.ObjectID]model.Interaction) model.CustomerDetail {
	d := model.CustomerDetail{Customer: c, Interactions: []model.Interaction{}}
	for _, id := range c.Interactions {
		if i, ok := byID[id]; ok {
			d.Interactions = append(d.Interactions, i)
		}
	}
	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
