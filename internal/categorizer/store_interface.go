package categorizer

import "fjacquet/finsort/internal/models"

// TaxonomyRepository is the taxonomy storage the categorizer works against.
// store.TaxonomyStore and store.MockTaxonomyStore implement it.
type TaxonomyRepository interface {
	Load(dir models.Direction) ([]models.TaxonomyEntry, error)
	Options(dir models.Direction) ([]string, error)
	AddActivity(label, activity string, dir models.Direction) (models.Direction, error)
	AddClassification(name, activity string, dir models.Direction) error
}
