package model

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var validate = validator.New()

// Problem is one rejected field.
type Problem struct {
	Field   string
	Message string
}

// Result is the outcome of validating a payload. Problems are kept in the
// order the checks ran; the first one is what clients see.
type Result struct {
	Problems []Problem
}

// OK reports whether no problem was found.
func (r Result) OK() bool { return len(r.Problems) == 0 }

// First returns the first problem. It must only be called when !OK().
func (r Result) First() Problem { return r.Problems[0] }

func (r *Result) add(field, msg string) {
	r.Problems = append(r.Problems, Problem{Field: field, Message: msg})
}

// IsEmail reports whether s is a syntactically valid address.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func oneOf(v string, allowed []string) bool {
	return validate.Var(v, "oneof="+strings.Join(allowed, " ")) == nil
}

func blank(s *string) bool { return s == nil || strings.TrimSpace(*s) == "" }

// ParseID parses a hex ObjectID.
func ParseID(s string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return bson.NilObjectID, false
	}
	return id, true
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ValidateCustomer checks a customer payload. Name is only required on
// create; on update an explicitly empty name is still rejected.
func ValidateCustomer(in CustomerInput, create bool) Result {
	var r Result
	if (create && blank(in.Name)) || (!create && in.Name != nil && blank(in.Name)) {
		r.add("name", "Customer name is required")
	}
	return r
}

// ValidateInteraction checks an interaction payload.
func ValidateInteraction(in InteractionInput, create bool) Result {
	var r Result
	if create && blank(in.Type) {
		r.add("type", "Please add a type")
		return r
	}
	if in.Type != nil && !oneOf(*in.Type, InteractionTypes) {
		r.add("type", "Interaction type must be one of Meeting, Call, Email")
	}
	if create && blank(in.CustomerID) {
		r.add("customerId", "Please add a customer")
	} else if create {
		if _, ok := ParseID(*in.CustomerID); !ok {
			r.add("customerId", "Invalid customer id")
		}
	}
	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		if _, ok := ParseDate(*in.Date); !ok {
			r.add("date", "Invalid date")
		}
	}
	return r
}

// ValidateLead checks a lead payload.
func ValidateLead(in LeadInput, create bool) Result {
	var r Result
	if (create && blank(in.Name)) || (!create && in.Name != nil && blank(in.Name)) {
		r.add("name", "Lead name is required")
	}
	if in.Status != nil && !oneOf(*in.Status, LeadStatuses) {
		r.add("status", "Lead status must be one of New, Contacted, Qualified, Lost, Won")
	}
	if in.ContactInfo != nil && in.ContactInfo.Email != "" && !IsEmail(in.ContactInfo.Email) {
		r.add("contactInfo.email", "Please provide a valid email")
	}
	if in.SalesRepresentative != nil && *in.SalesRepresentative != "" {
		if _, ok := ParseID(*in.SalesRepresentative); !ok {
			r.add("salesRepresentative", "Invalid sales representative id")
		}
	}
	if in.Opportunities != nil {
		for _, s := range *in.Opportunities {
			if _, ok := ParseID(s); !ok {
				r.add("opportunities", "Invalid opportunity id")
				break
			}
		}
	}
	return r
}

// ValidateOpportunity checks an opportunity payload. The required-field
// checks run in the order name, value, lead; a zero value counts as
// missing on create.
func ValidateOpportunity(in OpportunityInput, create bool) Result {
	var r Result
	if create {
		switch {
		case blank(in.Name):
			r.add("name", "Opportunity name is required")
		case in.Value == nil || *in.Value == 0:
			r.add("value", "Opportunity value is required")
		case blank(in.Lead):
			r.add("lead", "Lead is required")
		}
		if !r.OK() {
			return r
		}
	} else if in.Name != nil && blank(in.Name) {
		r.add("name", "Opportunity name is required")
	}
	if in.Stage != nil && !oneOf(*in.Stage, OpportunityStages) {
		r.add("stage", "Opportunity stage must be one of Qualification, Proposal, Negotiation, Closed")
	}
	if in.Lead != nil && !blank(in.Lead) {
		if _, ok := ParseID(*in.Lead); !ok {
			r.add("lead", "Invalid lead id")
		}
	}
	if in.ExpectedCloseDate != nil && strings.TrimSpace(*in.ExpectedCloseDate) != "" {
		if _, ok := ParseDate(*in.ExpectedCloseDate); !ok {
			r.add("expectedCloseDate", "Invalid date")
		}
	}
	return r
}

// ValidateRegister checks a register payload. Role is deliberately not
// checked against the known roles.
func ValidateRegister(in RegisterInput) Result {
	var r Result
	switch {
	case strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "":
		r.add("", "Please provide all values")
	case !IsEmail(strings.TrimSpace(in.Email)):
		r.add("email", "Please provide a valid email")
	}
	return r
}

// ValidateLogin checks a login payload.
func ValidateLogin(in LoginInput) Result {
	var r Result
	switch {
	case strings.TrimSpace(in.Email) == "" || in.Password == "":
		r.add("", "Please provide email and password")
	case !IsEmail(strings.TrimSpace(in.Email)):
		r.add("email", "Please provide a valid email")
	}
	return r
}

// ValidateProfile checks a self-service profile update.
func ValidateProfile(in ProfileInput) Result {
	var r Result
	switch {
	case strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "":
		r.add("", "Please provide all values")
	case !IsEmail(strings.TrimSpace(in.Email)):
		r.add("email", "Please provide a valid email")
	}
	return r
}

// ValidateUser checks an admin user update. Only the email format is
// enforced.
func ValidateUser(in UserInput) Result {
	var r Result
	if in.Email != nil && !IsEmail(strings.TrimSpace(*in.Email)) {
		r.add("email", "Please provide a valid email")
	}
	if in.Name != nil && blank(in.Name) {
		r.add("name", "Name cannot be empty")
	}
	if in.Password != nil && *in.Password == "" {
		r.add("password", "Password cannot be empty")
	}
	return r
}
