package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/repository"
)

// InteractionService owns interactions and the customer -> interaction link.
//
// Create performs two single-document writes (insert the interaction, then
// push its id onto the customer). They are not wrapped in a transaction: if
// the second write fails the interaction exists without being listed on its
// customer. Delete does not pull the id back out of the customer.
type InteractionService struct {
	interactions InteractionStore
	customers    CustomerStore
	events       notifier
	now          func() time.Time
}

func NewInteractionService(interactions InteractionStore, customers CustomerStore, pub EventPublisher) *InteractionService {
	return &InteractionService{
		interactions: interactions,
		customers:    customers,
		events:       notifier{pub: pub},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *InteractionService) Create(ctx context.Context, in model.InteractionInput) (*model.Interaction, error) {
	if r := model.ValidateInteraction(in, true); !r.OK() {
		return nil, invalid(r)
	}
	customerID, _ := model.ParseID(*in.CustomerID)
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Customer not found")
		}
		return nil, errors.Wrap(err, "load customer")
	}

	i := &model.Interaction{
		Type:        *in.Type,
		Date:        s.now(),
		Time:        deref(in.Time),
		Description: deref(in.Description),
		CustomerID:  customer.ID,
	}
	if d, ok := parseOptionalDate(in.Date); ok {
		i.Date = d
	}
	if err := s.interactions.Create(ctx, i); err != nil {
		return nil, errors.Wrap(err, "create interaction")
	}
	if err := s.customers.AddInteraction(ctx, customer.ID, i.ID); err != nil {
		return nil, errors.Wrapf(err, "link interaction %s to customer %s", i.ID.Hex(), customer.ID.Hex())
	}
	s.events.emit(ctx, "interaction", "created", i.ID, customer.ID)
	return i, nil
}

// List applies the optional type/customer filters and resolves customers.
func (s *InteractionService) List(ctx context.Context, f model.InteractionFilter) ([]model.InteractionDetail, error) {
	items, err := s.interactions.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list interactions")
	}
	ids := make([]bson.ObjectID, 0, len(items))
	for _, i := range items {
		ids = append(ids, i.CustomerID)
	}
	byID, err := s.customerIndex(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.InteractionDetail, 0, len(items))
	for _, i := range items {
		out = append(out, interactionDetail(i, byID))
	}
	return out, nil
}

func (s *InteractionService) GetByID(ctx context.Context, id string) (*model.InteractionDetail, error) {
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, NotFound("Interaction not found")
	}
	i, err := s.interactions.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Interaction not found")
		}
		return nil, errors.Wrap(err, "load interaction")
	}
	return s.detail(ctx, i)
}

// Update applies type, date, time and description; the customer link is
// fixed at creation.
func (s *InteractionService) Update(ctx context.Context, id string, in model.InteractionInput) (*model.InteractionDetail, error) {
	in.CustomerID = nil
	if r := model.ValidateInteraction(in, false); !r.OK() {
		return nil, invalid(r)
	}
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, NotFound("Interaction not found")
	}
	p := model.InteractionPatch{Type: in.Type, Time: in.Time, Description: in.Description}
	if d, ok := parseOptionalDate(in.Date); ok {
		p.Date = &d
	}
	i, err := s.interactions.Update(ctx, oid, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Interaction not found")
		}
		return nil, errors.Wrap(err, "update interaction")
	}
	s.events.emit(ctx, "interaction", "updated", i.ID)
	return s.detail(ctx, i)
}

// Delete removes the interaction document. The owning customer keeps the
// stale id in its collection.
func (s *InteractionService) Delete(ctx context.Context, id string) error {
	oid, ok := model.ParseID(id)
	if !ok {
		return NotFound("Interaction not found")
	}
	if err := s.interactions.Delete(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("Interaction not found")
		}
		return errors.Wrap(err, "delete interaction")
	}
	s.events.emit(ctx, "interaction", "deleted", oid)
	return nil
}

func (s *InteractionService) detail(ctx context.Context, i *model.Interaction) (*model.InteractionDetail, error) {
	byID, err := s.customerIndex(ctx, []bson.ObjectID{i.CustomerID})
	if err != nil {
		return nil, err
	}
	d := interactionDetail(*i, byID)
	return &d, nil
}

func (s *InteractionService) customerIndex(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]model.Customer, error) {
	byID := make(map[bson.ObjectID]model.Customer, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	found, err := s.customers.GetByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, errors.Wrap(err, "resolve customers")
	}
	for _, c := range found {
		byID[c.ID] = c
	}
	return byID, nil
}

func interactionDetail(i model.Interaction, byID map[bson.ObjectID]model.Customer) model.InteractionDetail {
	d := model.InteractionDetail{Interaction: i}
	if c, ok := byID[i.CustomerID]; ok {
		d.Customer = &c
	}
	return d
}

func parseOptionalDate(s *string) (time.Time, bool) {
	if s == nil || *s == "" {
		return time.Time{}, false
	}
	return model.ParseDate(*s)
}

func uniqueIDs(ids []bson.ObjectID) []bson.ObjectID {
	seen := make(map[bson.ObjectID]struct{}, len(ids))
	out := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
