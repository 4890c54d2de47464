package abm

import (
	"fmt"

	"github.com/talentseek/b2beelanding/internal/apperr"
)

// MockLead is one row of the simulated prospect list on a sales page.
type MockLead struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Title   string `json:"title"`
}

// MockAnalytics is the simulated campaign summary on a sales page.
type MockAnalytics struct {
	Replies   float64 `json:"replies"`
	Meetings  float64 `json:"meetings"`
	OpenRate  float64 `json:"openRate"`
	ReplyRate float64 `json:"replyRate"`
}

// MockCompaniesOf reads a list of company names.
func MockCompaniesOf(v Value) ([]string, error) {
	items, ok := v.AsList()
	if !ok {
		return nil, fmt.Errorf("expected a list, got %s", v.Kind())
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.AsString()
		if !ok {
			return nil, fmt.Errorf("item %d: expected a string, got %s", i, item.Kind())
		}
		out = append(out, s)
	}
	return out, nil
}

// MockLeadsOf reads a list of {name, company, title} objects.
func MockLeadsOf(v Value) ([]MockLead, error) {
	items, ok := v.AsList()
	if !ok {
		return nil, fmt.Errorf("expected a list, got %s", v.Kind())
	}
	out := make([]MockLead, 0, len(items))
	for i, item := range items {
		if item.Kind() != KindObject {
			return nil, fmt.Errorf("item %d: expected an object, got %s", i, item.Kind())
		}
		var lead MockLead
		for _, f := range []struct {
			name string
			dst  *string
		}{{"name", &lead.Name}, {"company", &lead.Company}, {"title", &lead.Title}} {
			s, ok := item.Field(f.name).AsString()
			if !ok {
				return nil, fmt.Errorf("item %d: %s must be a string", i, f.name)
			}
			*f.dst = s
		}
		out = append(out, lead)
	}
	return out, nil
}

// MockAnalyticsOf reads the analytics summary object.
func MockAnalyticsOf(v Value) (MockAnalytics, error) {
	var a MockAnalytics
	if v.Kind() != KindObject {
		return a, fmt.Errorf("expected an object, got %s", v.Kind())
	}
	for _, f := range []struct {
		name string
		dst  *float64
	}{{"replies", &a.Replies}, {"meetings", &a.Meetings}, {"openRate", &a.OpenRate}, {"replyRate", &a.ReplyRate}} {
		n, ok := v.Field(f.name).AsNumber()
		if !ok {
			return a, fmt.Errorf("%s must be a number", f.name)
		}
		*f.dst = n
	}
	return a, nil
}

// validateMocks checks the sales-page blobs have the shapes the page renders.
func validateMocks(verr *apperr.ValidationError, companies, leads, analytics *Value) {
	if companies != nil {
		if _, err := MockCompaniesOf(*companies); err != nil {
			verr.Add("mockCompanies", err.Error())
		}
	}
	if leads != nil {
		if _, err := MockLeadsOf(*leads); err != nil {
			verr.Add("mockLeads", err.Error())
		}
	}
	if analytics != nil {
		if _, err := MockAnalyticsOf(*analytics); err != nil {
			verr.Add("mockAnalytics", err.Error())
		}
	}
}
