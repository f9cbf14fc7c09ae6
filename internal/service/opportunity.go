package service

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/repository"
)

// OpportunityService owns opportunities and the lead -> opportunity link.
// Create and Delete each touch two documents without a transaction.
type OpportunityService struct {
	opportunities OpportunityStore
	leads         LeadStore
	events        notifier
}

func NewOpportunityService(opportunities OpportunityStore, leads LeadStore, pub EventPublisher) *OpportunityService {
	return &OpportunityService{opportunities: opportunities, leads: leads, events: notifier{pub: pub}}
}

func (s *OpportunityService) Create(ctx context.Context, in model.OpportunityInput) (*model.Opportunity, error) {
	if r := model.ValidateOpportunity(in, true); !r.OK() {
		return nil, invalid(r)
	}
	leadID, _ := model.ParseID(*in.Lead)
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Lead not found")
		}
		return nil, errors.Wrap(err, "load lead")
	}

	o := &model.Opportunity{
		Name:   *in.Name,
		Value:  *in.Value,
		Stage:  model.StageQualification,
		LeadID: lead.ID,
	}
	if in.Stage != nil {
		o.Stage = *in.Stage
	}
	if d, ok := parseOptionalDate(in.ExpectedCloseDate); ok {
		o.ExpectedCloseDate = &d
	}
	if err := s.opportunities.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create opportunity")
	}
	if err := s.leads.AddOpportunity(ctx, lead.ID, o.ID); err != nil {
		return nil, errors.Wrapf(err, "link opportunity %s to lead %s", o.ID.Hex(), lead.ID.Hex())
	}
	s.events.emit(ctx, "opportunity", "created", o.ID, lead.ID)
	return o, nil
}

func (s *OpportunityService) List(ctx context.Context, f model.OpportunityFilter) ([]model.OpportunityDetail, error) {
	items, err := s.opportunities.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list opportunities")
	}
	return s.details(ctx, items)
}

func (s *OpportunityService) GetByID(ctx context.Context, id string) (*model.OpportunityDetail, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.details(ctx, []model.Opportunity{*o})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Update applies a partial update. Moving an opportunity to another lead
// relinks it: the new lead must exist, gains the id, and the old lead
// loses it.
func (s *OpportunityService) Update(ctx context.Context, id string, in model.OpportunityInput) (*model.Opportunity, error) {
	if r := model.ValidateOpportunity(in, false); !r.OK() {
		return nil, invalid(r)
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	p := model.OpportunityPatch{Name: in.Name, Value: in.Value, Stage: in.Stage}
	if d, ok := parseOptionalDate(in.ExpectedCloseDate); ok {
		p.ExpectedCloseDate = &d
	}
	var moveTo *bson.ObjectID
	if lid, ok := optionalID(in.Lead); ok && lid != current.LeadID {
		if _, err := s.leads.GetByID(ctx, lid); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, NotFound("Lead not found")
			}
			return nil, errors.Wrap(err, "load lead")
		}
		p.Lead = &lid
		moveTo = &lid
	}

	o, err := s.opportunities.Update(ctx, current.ID, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Opportunity not found")
		}
		return nil, errors.Wrap(err, "update opportunity")
	}
	if moveTo != nil {
		if err := s.leads.RemoveOpportunity(ctx, current.LeadID, o.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, errors.Wrap(err, "unlink opportunity from previous lead")
		}
		if err := s.leads.AddOpportunity(ctx, *moveTo, o.ID); err != nil {
			return nil, errors.Wrap(err, "link opportunity to new lead")
		}
		s.events.emit(ctx, "opportunity", "updated", o.ID, current.LeadID, *moveTo)
		return o, nil
	}
	s.events.emit(ctx, "opportunity", "updated", o.ID)
	return o, nil
}

// Delete unlinks the opportunity from its lead and then removes it. A lead
// that no longer exists is reported as NotFound and nothing is deleted.
func (s *OpportunityService) Delete(ctx context.Context, id string) error {
	o, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.leads.GetByID(ctx, o.LeadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("Lead not found")
		}
		return errors.Wrap(err, "load lead")
	}
	if err := s.leads.RemoveOpportunity(ctx, o.LeadID, o.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("Lead not found")
		}
		return errors.Wrap(err, "unlink opportunity")
	}
	if err := s.opportunities.Delete(ctx, o.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("Opportunity not found")
		}
		return errors.Wrap(err, "delete opportunity")
	}
	s.events.emit(ctx, "opportunity", "deleted", o.ID, o.LeadID)
	return nil
}

func (s *OpportunityService) load(ctx context.Context, id string) (*model.Opportunity, error) {
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, NotFound("Opportunity not found")
	}
	o, err := s.opportunities.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Opportunity not found")
		}
		return nil, errors.Wrap(err, "load opportunity")
	}
	return o, nil
}

func (s *OpportunityService) details(ctx context.Context, items []model.Opportunity) ([]model.OpportunityDetail, error) {
	ids := make([]bson.ObjectID, 0, len(items))
	for _, o := range items {
		ids = append(ids, o.LeadID)
	}
	leads := make(map[bson.ObjectID]model.Lead)
	if len(ids) > 0 {
		found, err := s.leads.GetByIDs(ctx, uniqueIDs(ids))
		if err != nil {
			return nil, errors.Wrap(err, "resolve leads")
		}
		for _, l := range found {
			leads[l.ID] = l
		}
	}
	out := make([]model.OpportunityDetail, 0, len(items))
	for _, o := range items {
		d := model.OpportunityDetail{Opportunity: o}
		if l, ok := leads[o.LeadID]; ok {
			d.Lead = &l
		}
		out = append(out, d)
	}
	return out, nil
}
