package models

// TaxonomyEntry is one classification label and the activity descriptions
// attributed to it.
type TaxonomyEntry struct {
	Classification string   `json:"classification" yaml:"classification"`
	Attributed     []string `json:"attributed" yaml:"attributed"`
}

// HasActivity reports whether activity is already attributed verbatim.
func (e TaxonomyEntry) HasActivity(activity string) bool {
	for _, attributed := range e.Attributed {
		if attributed == activity {
			return true
		}
	}
	return false
}
