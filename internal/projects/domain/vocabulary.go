package domain

// Vocabulary holds the closed value sets for provinces and industries.
// The core treats them as opaque; callers load them from configuration.
type Vocabulary struct {
	provinces  []string
	industries []string
	provSet    map[string]struct{}
	indSet     map[string]struct{}
}

func NewVocabulary(provinces, industries []string) *Vocabulary {
	v := &Vocabulary{
		provSet: make(map[string]struct{}, len(provinces)),
		indSet:  make(map[string]struct{}, len(industries)),
	}
	for _, p := range provinces {
		if _, dup := v.provSet[p]; dup || p == "" {
			continue
		}
		v.provSet[p] = struct{}{}
		v.provinces = append(v.provinces, p)
	}
	for _, i := range industries {
		if _, dup := v.indSet[i]; dup || i == "" {
			continue
		}
		v.indSet[i] = struct{}{}
		v.industries = append(v.industries, i)
	}
	return v
}

// A nil Vocabulary is empty.
func (v *Vocabulary) HasProvince(p string) bool {
	if v == nil {
		return false
	}
	_, ok := v.provSet[p]
	return ok
}

func (v *Vocabulary) HasIndustry(i string) bool {
	if v == nil {
		return false
	}
	_, ok := v.indSet[i]
	return ok
}

// Provinces returns the provinces in configured order.
func (v *Vocabulary) Provinces() []string {
	if v == nil {
		return []string{}
	}
	return append([]string(nil), v.provinces...)
}

// Industries returns the industries in configured order.
func (v *Vocabulary) Industries() []string {
	if v == nil {
		return []string{}
	}
	return append([]string(nil), v.industries...)
}
