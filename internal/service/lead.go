package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/repository"
)

// LeadService owns leads and the cascade onto their opportunities.
type LeadService struct {
	leads         LeadStore
	opportunities OpportunityStore
	users         UserStore
	events        notifier
	now           func() time.Time
}

func NewLeadService(leads LeadStore, opportunities OpportunityStore, users UserStore, pub EventPublisher) *LeadService {
	return &LeadService{
		leads:         leads,
		opportunities: opportunities,
		users:         users,
		events:        notifier{pub: pub},
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *LeadService) Create(ctx context.Context, in model.LeadInput) (*model.Lead, error) {
	if r := model.ValidateLead(in, true); !r.OK() {
		return nil, invalid(r)
	}
	l := &model.Lead{
		Name:          *in.Name,
		Source:        deref(in.Source),
		Status:        model.LeadNew,
		Opportunities: []bson.ObjectID{},
		CreatedAt:     s.now(),
	}
	if in.ContactInfo != nil {
		l.ContactInfo = *in.ContactInfo
	}
	if in.Status != nil {
		l.Status = *in.Status
	}
	if id, ok := optionalID(in.SalesRepresentative); ok {
		l.SalesRepresentative = &id
	}
	if in.Opportunities != nil {
		l.Opportunities = parseIDs(*in.Opportunities)
	}
	if err := s.leads.Create(ctx, l); err != nil {
		return nil, errors.Wrap(err, "create lead")
	}
	s.events.emit(ctx, "lead", "created", l.ID)
	return l, nil
}

// List applies the optional status / salesRepresentative / opportunity
// filters and resolves both references.
func (s *LeadService) List(ctx context.Context, f model.LeadFilter) ([]model.LeadDetail, error) {
	leads, err := s.leads.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list leads")
	}
	return s.details(ctx, leads)
}

func (s *LeadService) GetByID(ctx context.Context, id string) (*model.LeadDetail, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.details(ctx, []model.Lead{*l})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *LeadService) Update(ctx context.Context, id string, in model.LeadInput) (*model.Lead, error) {
	if r := model.ValidateLead(in, false); !r.OK() {
		return nil, invalid(r)
	}
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, NotFound("Lead not found")
	}
	p := model.LeadPatch{Name: in.Name, ContactInfo: in.ContactInfo, Source: in.Source, Status: in.Status}
	if rid, ok := optionalID(in.SalesRepresentative); ok {
		p.SalesRepresentative = &rid
	}
	if in.Opportunities != nil {
		ids := parseIDs(*in.Opportunities)
		p.Opportunities = &ids
	}
	l, err := s.leads.Update(ctx, oid, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Lead not found")
		}
		return nil, errors.Wrap(err, "update lead")
	}
	s.events.emit(ctx, "lead", "updated", l.ID)
	return l, nil
}

// Delete removes every opportunity of the lead in order and then the lead.
// The first opportunity that cannot be found aborts the cascade with
// NotFound; opportunities deleted before it stay deleted and the lead is
// left in place.
func (s *LeadService) Delete(ctx context.Context, id string) error {
	l, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	for _, oppID := range l.Opportunities {
		if err := s.opportunities.Delete(ctx, oppID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NotFound("Opportunity not found")
			}
			return errors.Wrapf(err, "delete opportunity %s of lead %s", oppID.Hex(), l.ID.Hex())
		}
	}
	if err := s.leads.Delete(ctx, l.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("Lead not found")
		}
		return errors.Wrap(err, "delete lead")
	}
	s.events.emit(ctx, "lead", "deleted", l.ID, l.Opportunities...)
	return nil
}

func (s *LeadService) load(ctx context.Context, id string) (*model.Lead, error) {
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, NotFound("Lead not found")
	}
	l, err := s.leads.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Lead not found")
		}
		return nil, errors.Wrap(err, "load lead")
	}
	return l, nil
}

func (s *LeadService) details(ctx context.Context, leads []model.Lead) ([]model.LeadDetail, error) {
	var repIDs, oppIDs []bson.ObjectID
	for _, l := range leads {
		if l.SalesRepresentative != nil {
			repIDs = append(repIDs, *l.SalesRepresentative)
		}
		oppIDs = append(oppIDs, l.Opportunities...)
	}

	reps := make(map[bson.ObjectID]model.User)
	if len(repIDs) > 0 {
		users, err := s.users.GetByIDs(ctx, uniqueIDs(repIDs))
		if err != nil {
			return nil, errors.Wrap(err, "resolve sales representatives")
		}
		for _, u := range users {
			reps[u.ID] = u
		}
	}
	opps := make(map[bson.ObjectID]model.Opportunity)
	if len(oppIDs) > 0 {
		found, err := s.opportunities.GetByIDs(ctx, uniqueIDs(oppIDs))
		if err != nil {
			return nil, errors.Wrap(err, "resolve opportunities")
		}
		for _, o := range found {
			opps[o.ID] = o
		}
	}

	out := make([]model.LeadDetail, 0, len(leads))
	for _, l := range leads {
		d := model.LeadDetail{Lead: l, Opportunities: []model.Opportunity{}}
		if l.SalesRepresentative != nil {
			if u, ok := reps[*l.SalesRepresentative]; ok {
				d.SalesRepresentative = &u
			}
		}
		for _, id := range l.Opportunities {
			if o, ok := opps[id]; ok {
				d.Opportunities = append(d.Opportunities, o)
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// optionalID parses an id that has already passed validation; an absent
// or empty value reports false.
func optionalID(s *string) (bson.ObjectID, bool) {
	if s == nil || *s == "" {
		return bson.NilObjectID, false
	}
	return model.ParseID(*s)
}

func parseIDs(ss []string) []bson.ObjectID {
	ids := make([]bson.ObjectID, 0, len(ss))
	for _, s := range ss {
		if id, ok := model.ParseID(s); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
