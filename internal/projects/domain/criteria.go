package domain

import "strings"

// AllValues is the wire sentinel select inputs send for "no constraint".
const AllValues = "all"

// Criteria is the active filter state of the directory.
// A nil field places no constraint on the result.
type Criteria struct {
	Name            *string `json:"name,omitempty"`
	Industry        *string `json:"industry,omitempty"`
	Province        *string `json:"province,omitempty"`
	FounderName     *string `json:"founder_name,omitempty"`
	FounderProvince *string `json:"founder_province,omitempty"`
}

// CriteriaInput carries criteria exactly as a form or query string sends them.
type CriteriaInput struct {
	Name            string `form:"name"`
	Industry        string `form:"industry"`
	Province        string `form:"province"`
	FounderName     string `form:"founder_name"`
	FounderProvince string `form:"founder_province"`
}

// Criteria converts wire values into explicit optionals. Empty text inputs and
// the "all" select value both become nil. Text is matched as typed, so
// surrounding spaces are part of the needle.
func (in CriteriaInput) Criteria() Criteria {
	return Criteria{
		Name:            textOpt(in.Name),
		Industry:        selectOpt(in.Industry),
		Province:        selectOpt(in.Province),
		FounderName:     textOpt(in.FounderName),
		FounderProvince: selectOpt(in.FounderProvince),
	}
}

// Active reports whether at least one predicate constrains the result.
func (c Criteria) Active() bool {
	return c.Name != nil || c.Industry != nil || c.Province != nil ||
		c.FounderName != nil || c.FounderProvince != nil
}

// Validate checks enumerated fields against the vocabulary. A nil vocabulary
// accepts any value.
func (c Criteria) Validate(v *Vocabulary) error {
	if v == nil {
		return nil
	}
	if c.Industry != nil && !v.HasIndustry(*c.Industry) {
		return NewValidationError(MsgInvalidCriteria, "industry")
	}
	if c.Province != nil && !v.HasProvince(*c.Province) {
		return NewValidationError(MsgInvalidCriteria, "province")
	}
	if c.FounderProvince != nil && !v.HasProvince(*c.FounderProvince) {
		return NewValidationError(MsgInvalidCriteria, "founder_province")
	}
	return nil
}

func textOpt(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func selectOpt(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == AllValues {
		return nil
	}
	return &s
}

// Opt returns a pointer to s, for building criteria in code.
func Opt(s string) *string { return &s }
