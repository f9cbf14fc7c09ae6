package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Opportunity stages.
const (
	StageQualification = "Qualification"
	StageProposal      = "Proposal"
	StageNegotiation   = "Negotiation"
	StageClosed        = "Closed"
)

// OpportunityStages lists the accepted values of Opportunity.Stage.
var OpportunityStages = []string{StageQualification, StageProposal, StageNegotiation, StageClosed}

// Opportunity is a tracked potential sale owned by exactly one Lead.
type Opportunity struct {
	ID                bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name              string        `bson:"name" json:"name"`
	Value             float64       `bson:"value" json:"value"`
	Stage             string        `bson:"stage" json:"stage"`
	ExpectedCloseDate *time.Time    `bson:"expectedCloseDate,omitempty" json:"expectedCloseDate,omitempty"`
	LeadID            bson.ObjectID `bson:"lead" json:"lead"`
}

// OpportunityDetail resolves the owning lead; Lead is nil when it no
// longer exists.
type OpportunityDetail struct {
	Opportunity
	Lead *Lead `json:"lead"`
}

// OpportunityInput is the body of POST and PUT /opportunities.
type OpportunityInput struct {
	Name              *string  `json:"name"`
	Value             *float64 `json:"value"`
	Stage             *string  `json:"stage"`
	ExpectedCloseDate *string  `json:"expectedCloseDate"`
	Lead              *string  `json:"lead"`
}

// OpportunityPatch is the persisted form of an opportunity update.
type OpportunityPatch struct {
	Name              *string
	Value             *float64
	Stage             *string
	ExpectedCloseDate *time.Time
	Lead              *bson.ObjectID
}

// OpportunityFilter holds the optional equality filters of the list call.
type OpportunityFilter struct {
	Lead  *bson.ObjectID
	Stage string
}
