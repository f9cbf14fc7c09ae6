package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Lead statuses.
const (
	LeadNew       = "New"
	LeadContacted = "Contacted"
	LeadQualified = "Qualified"
	LeadLost      = "Lost"
	LeadWon       = "Won"
)

// LeadStatuses lists the accepted values of Lead.Status.
var LeadStatuses = []string{LeadNew, LeadContacted, LeadQualified, LeadLost, LeadWon}

// ContactInfo is the embedded contact block of a lead.
type ContactInfo struct {
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Lead is a prospective customer. Opportunities holds the ids of the
// Opportunity documents whose lead reference points here.
type Lead struct {
	ID                  bson.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name                string          `bson:"name" json:"name"`
	ContactInfo         ContactInfo     `bson:"contactInfo" json:"contactInfo"`
	Source              string          `bson:"source,omitempty" json:"source,omitempty"`
	Status              string          `bson:"status" json:"status"`
	SalesRepresentative *bson.ObjectID  `bson:"salesRepresentative,omitempty" json:"salesRepresentative,omitempty"`
	Opportunities       []bson.ObjectID `bson:"opportunities" json:"opportunities"`
	CreatedAt           time.Time       `bson:"createdAt" json:"createdAt"`
}

// LeadDetail resolves the sales representative and the opportunities.
type LeadDetail struct {
	Lead
	SalesRepresentative *User         `json:"salesRepresentative"`
	Opportunities       []Opportunity `json:"opportunities"`
}

// LeadInput is the body of POST and PUT /leads.
type LeadInput struct {
	Name                *string      `json:"name"`
	ContactInfo         *ContactInfo `json:"contactInfo"`
	Source              *string      `json:"source"`
	Status              *string      `json:"status"`
	SalesRepresentative *string      `json:"salesRepresentative"`
	Opportunities       *[]string    `json:"opportunities"`
}

// LeadPatch is the persisted form of a lead update.
type LeadPatch struct {
	Name                *string
	ContactInfo         *ContactInfo
	Source              *string
	Status              *string
	SalesRepresentative *bson.ObjectID
	Opportunities       *[]bson.ObjectID
}

// LeadFilter holds the optional equality filters of the list call.
// Opportunity matches leads whose collection contains that id.
type LeadFilter struct {
	Status              string
	SalesRepresentative *bson.ObjectID
	Opportunity         *bson.ObjectID
}
