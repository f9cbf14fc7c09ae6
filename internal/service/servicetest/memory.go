// Package servicetest provides in-memory implementations of the service
// store interfaces for tests. They honour the same contracts as the Mongo
// repositories: absent documents yield repository.ErrNotFound, GetByIDs
// skips unknown ids and List keeps insertion order.
package servicetest

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/queue"
	"github.com/iliyamo/crm-service/internal/repository"
)

// table is an ordered map of documents keyed by id.
type table[T any] struct {
	mu    sync.Mutex
	order []bson.ObjectID
	docs  map[bson.ObjectID]T
}

func (t *table[T]) put(id bson.ObjectID, v T) {
	if t.docs == nil {
		t.docs = make(map[bson.ObjectID]T)
	}
	if _, ok := t.docs[id]; !ok {
		t.order = append(t.order, id)
	}
	t.docs[id] = v
}

func (t *table[T]) get(id bson.ObjectID) (T, error) {
	v, ok := t.docs[id]
	if !ok {
		var zero T
		return zero, repository.ErrNotFound
	}
	return v, nil
}

func (t *table[T]) remove(id bson.ObjectID) error {
	if _, ok := t.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.docs, id)
	t.order = slices.DeleteFunc(t.order, func(x bson.ObjectID) bool { return x == id })
	return nil
}

func (t *table[T]) list(keep func(T) bool) []T {
	out := []T{}
	for _, id := range t.order {
		if v := t.docs[id]; keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (t *table[T]) byIDs(ids []bson.ObjectID) []T {
	out := []T{}
	for _, id := range ids {
		if v, ok := t.docs[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Users is an in-memory service.UserStore.
type Users struct{ t table[model.User] }

func NewUsers() *Users { return &Users{} }

func (s *Users) Create(_ context.Context, u *model.User) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	for _, existing := range s.t.docs {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = bson.NewObjectID()
	s.t.put(u.ID, *u)
	return nil
}

func (s *Users) GetByID(_ context.Context, id bson.ObjectID) (*model.User, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	u, err := s.t.get(id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	for _, u := range s.t.docs {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Users) GetByIDs(_ context.Context, ids []bson.ObjectID) ([]model.User, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.byIDs(ids), nil
}

func (s *Users) ListExcept(_ context.Context, id bson.ObjectID) ([]model.User, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.list(func(u model.User) bool { return u.ID != id }), nil
}

func (s *Users) Update(_ context.Context, id bson.ObjectID, p model.UserPatch) (*model.User, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	u, err := s.t.get(id)
	if err != nil {
		return nil, err
	}
	if p.Email != nil {
		for _, other := range s.t.docs {
			if other.ID != id && other.Email == *p.Email {
				return nil, repository.ErrEmailExists
			}
		}
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	u.UpdatedAt = time.Now().UTC()
	s.t.put(id, u)
	return &u, nil
}

// Customers is an in-memory service.CustomerStore.
type Customers struct{ t table[model.Customer] }

func NewCustomers() *Customers { return &Customers{} }

func (s *Customers) Create(_ context.Context, c *model.Customer) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	c.ID = bson.NewObjectID()
	if c.Interactions == nil {
		c.Interactions = []bson.ObjectID{}
	}
	s.t.put(c.ID, *c)
	return nil
}

func (s *Customers) List(context.Context) ([]model.Customer, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.list(nil), nil
}

func (s *Customers) GetByID(_ context.Context, id bson.ObjectID) (*model.Customer, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	c, err := s.t.get(id)
	if err != nil {
		return nil, err
	}
	c.Interactions = slices.Clone(c.Interactions)
	return &c, nil
}

func (s *Customers) GetByIDs(_ context.Context, ids []bson.ObjectID) ([]model.Customer, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.byIDs(ids), nil
}

func (s *Customers) Update(_ context.Context, id bson.ObjectID, in model.CustomerInput) (*model.Customer, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	c, err := s.t.get(id)
	if err != nil {
		return nil, err
	}
	assign(&c.Name, in.Name)
	assign(&c.ContactInfo, in.ContactInfo)
	assign(&c.Company, in.Company)
	assign(&c.Address, in.Address)
	assign(&c.Industry, in.Industry)
	assign(&c.Notes, in.Notes)
	s.t.put(id, c)
	return &c, nil
}

func (s *Customers) Delete(_ context.Context, id bson.ObjectID) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.remove(id)
}

func (s *Customers) AddInteraction(_ context.Context, customerID, interactionID bson.ObjectID) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	c, err := s.t.get(customerID)
	if err != nil {
		return err
	}
	c.Interactions = append(slices.Clone(c.Interactions), interactionID)
	s.t.put(customerID, c)
	return nil
}

// Interactions is an in-memory service.InteractionStore.
type Interactions struct{ t table[model.Interaction] }

func NewInteractions() *Interactions { return &Interactions{} }

func (s *Interactions) Create(_ context.Context, i *model.Interaction) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	i.ID = bson.NewObjectID()
	s.t.put(i.ID, *i)
	return nil
}

func (s *Interactions) List(_ context.Context, f model.InteractionFilter) ([]model.Interaction, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.list(func(i model.Interaction) bool {
		if f.Type != "" && i.Type != f.Type {
			return false
		}
		return f.Customer == nil || i.CustomerID == *f.Customer
	}), nil
}

func (s *Interactions) GetByID(_ context.Context, id bson.ObjectID) (*model.Interaction, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	i, err := s.t.get(id)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *Interactions) GetByIDs(_ context.Context, ids []bson.ObjectID) ([]model.Interaction, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.byIDs(ids), nil
}

func (s *Interactions) Update(_ context.Context, id bson.ObjectID, p model.InteractionPatch) (*model.Interaction, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	i, err := s.t.get(id)
	if err != nil {
		return nil, err
	}
	assign(&i.Type, p.Type)
	assign(&i.Date, p.Date)
	assign(&i.Time, p.Time)
	assign(&i.Description, p.Description)
	s.t.put(id, i)
	return &i, nil
}

func (s *Interactions) Delete(_ context.Context, id bson.ObjectID) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.remove(id)
}

// Leads is an in-memory service.LeadStore.
type Leads struct{ t table[model.Lead] }

func NewLeads() *Leads { return &Leads{} }

func (s *Leads) Create(_ context.Context, l *model.Lead) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	l.ID = bson.NewObjectID()
	if l.Opportunities == nil {
		l.Opportunities = []bson.ObjectID{}
	}
	s.t.put(l.ID, *l)
	return nil
}

func (s *Leads) List(_ context.Context, f model.LeadFilter) ([]model.Lead, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.list(func(l model.Lead) bool {
		if f.Status != "" && l.Status != f.Status {
			return false
		}
		if f.SalesRepresentative != nil && (l.SalesRepresentative == nil || *l.SalesRepresentative != *f.SalesRepresentative) {
			return false
		}
		return f.Opportunity == nil || slices.Contains(l.Opportunities, *f.Opportunity)
	}), nil
}

func (s *Leads) GetByID(_ context.Context, id bson.ObjectID) (*model.Lead, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	l, err := s.t.get(id)
	if err != nil {
		return nil, err
	}
	l.Opportunities = slices.Clone(l.Opportunities)
	return &l, nil
}

func (s *Leads) GetByIDs(_ context.Context, ids []bson.ObjectID) ([]model.Lead, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.byIDs(ids), nil
}

func (s *Leads) Update(_ context.Context, id bson.ObjectID, p model.LeadPatch) (*model.Lead, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	l, err := s.t.get(id)
	if err != nil {
		return nil, err
	}
	assign(&l.Name, p.Name)
	assign(&l.ContactInfo, p.ContactInfo)
	assign(&l.Source, p.Source)
	assign(&l.Status, p.Status)
	if p.SalesRepresentative != nil {
		rep := *p.SalesRepresentative
		l.SalesRepresentative = &rep
	}
	if p.Opportunities != nil {
		l.Opportunities = slices.Clone(*p.Opportunities)
	}
	s.t.put(id, l)
	return &l, nil
}

func (s *Leads) Delete(_ context.Context, id bson.ObjectID) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.remove(id)
}

func (s *Leads) AddOpportunity(_ context.Context, leadID, opportunityID bson.ObjectID) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	l, err := s.t.get(leadID)
	if err != nil {
		return err
	}
	l.Opportunities = append(slices.Clone(l.Opportunities), opportunityID)
	s.t.put(leadID, l)
	return nil
}

func (s *Leads) RemoveOpportunity(_ context.Context, leadID, opportunityID bson.ObjectID) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	l, err := s.t.get(leadID)
	if err != nil {
		return err
	}
	l.Opportunities = slices.DeleteFunc(slices.Clone(l.Opportunities), func(x bson.ObjectID) bool { return x == opportunityID })
	s.t.put(leadID, l)
	return nil
}

// Opportunities is an in-memory service.OpportunityStore.
type Opportunities struct{ t table[model.Opportunity] }

func NewOpportunities() *Opportunities { return &Opportunities{} }

func (s *Opportunities) Create(_ context.Context, o *model.Opportunity) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	o.ID = bson.NewObjectID()
	s.t.put(o.ID, *o)
	return nil
}

func (s *Opportunities) List(_ context.Context, f model.OpportunityFilter) ([]model.Opportunity, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.list(func(o model.Opportunity) bool {
		if f.Stage != "" && o.Stage != f.Stage {
			return false
		}
		return f.Lead == nil || o.LeadID == *f.Lead
	}), nil
}

func (s *Opportunities) GetByID(_ context.Context, id bson.ObjectID) (*model.Opportunity, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	o, err := s.t.get(id)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Opportunities) GetByIDs(_ context.Context, ids []bson.ObjectID) ([]model.Opportunity, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.byIDs(ids), nil
}

func (s *Opportunities) Update(_ context.Context, id bson.ObjectID, p model.OpportunityPatch) (*model.Opportunity, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	o, err := s.t.get(id)
	if err != nil {
		return nil, err
	}
	assign(&o.Name, p.Name)
	assign(&o.Value, p.Value)
	assign(&o.Stage, p.Stage)
	assign(&o.LeadID, p.Lead)
	if p.ExpectedCloseDate != nil {
		d := *p.ExpectedCloseDate
		o.ExpectedCloseDate = &d
	}
	s.t.put(id, o)
	return &o, nil
}

func (s *Opportunities) Delete(_ context.Context, id bson.ObjectID) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	return s.t.remove(id)
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	Events []queue.Event
	Err    error
}

func (p *Publisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, ev)
	return nil
}

// Types returns the type of every recorded event in order.
func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Events))
	for _, ev := range p.Events {
		out = append(out, ev.Type)
	}
	return out
}

func assign[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
