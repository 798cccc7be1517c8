package species

import "time"

// Species is one taxon in the lookup dataset. ScientificName is the key the
// tree highlighter matches against.
type Species struct {
	ID             int64     `json:"id"`
	ScientificName string    `json:"scientific_name"`
	CommonName     string    `json:"common_name,omitempty"`
	Family         string    `json:"family,omitempty"`
	Description    string    `json:"description,omitempty"`
	DateAdded      time.Time `json:"date_added"`
}

// Location is a geographic observation site.
type Location struct {
	ID              int64      `json:"id"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	Name            string     `json:"location_name"`
	Source          string     `json:"source,omitempty"`
	ObservationDate *time.Time `json:"observation_date,omitempty"`
}

// Sequence is a GenBank DNA record for a species.
type Sequence struct {
	ID               int64     `json:"id"`
	SpeciesID        int64     `json:"species_id"`
	GenBankAccession string    `json:"genbank_accession"`
	Gene             string    `json:"gene,omitempty"`
	Sequence         string    `json:"sequence"`
	LengthBP         int       `json:"length_bp"`
	Source           string    `json:"source,omitempty"`
	DateUpdated      time.Time `json:"date_updated"`
}

// Detail is a species with its locations and sequences populated.
type Detail struct {
	Species
	Locations []Location `json:"locations"`
	Sequences []Sequence `json:"sequences"`
}

// LocationCount is the number of species observed at a location.
type LocationCount struct {
	Location
	SpeciesCount int `json:"species_count"`
}
