package species

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/kds-visual/internal/db"
)

// ErrNotFound is returned when a species or location does not exist.
var ErrNotFound = errors.New("not found")

// Store provides access to species, locations and DNA sequences.
type Store struct {
	db *db.DB
}

// NewStore creates a new species store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

const speciesColumns = `id, scientific_name, common_name, family, description, date_added`

func scanSpecies(row interface{ Scan(...any) error }) (Species, error) {
	var sp Species
	err := row.Scan(&sp.ID, &sp.ScientificName, &sp.CommonName, &sp.Family, &sp.Description, &sp.DateAdded)
	return sp, err
}

// Create inserts a species and reports whether a row was added. An existing
// scientific name is left untouched and its row is returned instead.
func (s *Store) Create(ctx context.Context, sp *Species) (bool, error) {
	sp.ScientificName = strings.TrimSpace(sp.ScientificName)
	if sp.ScientificName == "" {
		return false, errors.New("scientific name is required")
	}
	if sp.DateAdded.IsZero() {
		sp.DateAdded = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO species (scientific_name, common_name, family, description, date_added)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(scientific_name) DO NOTHING`,
		sp.ScientificName, sp.CommonName, sp.Family, sp.Description, sp.DateAdded,
	)
	if err != nil {
		return false, fmt.Errorf("creating species: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("creating species: %w", err)
	}
	got, err := s.GetByName(ctx, sp.ScientificName)
	if err != nil {
		return false, err
	}
	*sp = got.Species
	return n > 0, nil
}

// Get retrieves a species by ID with its locations and sequences.
func (s *Store) Get(ctx context.Context, id int64) (*Detail, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+speciesColumns+` FROM species WHERE id = ?`, id)
	return s.detail(ctx, row)
}

// GetByName retrieves a species by scientific name, case-insensitively.
func (s *Store) GetByName(ctx context.Context, name string) (*Detail, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+speciesColumns+` FROM species WHERE scientific_name = ? COLLATE NOCASE`,
		strings.TrimSpace(name))
	return s.detail(ctx, row)
}

func (s *Store) detail(ctx context.Context, row *sql.Row) (*Detail, error) {
	sp, err := scanSpecies(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting species: %w", err)
	}
	d := &Detail{Species: sp}
	if d.Locations, err = s.Locations(ctx, sp.ID); err != nil {
		return nil, err
	}
	if d.Sequences, err = s.Sequences(ctx, sp.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns all species ordered by scientific name.
func (s *Store) List(ctx context.Context) ([]Species, error) {
	return s.query(ctx, `SELECT `+speciesColumns+` FROM species ORDER BY scientific_name`)
}

// Search returns species whose scientific or common name starts with prefix,
// for autocomplete. At most limit rows are returned (all when limit <= 0).
func (s *Store) Search(ctx context.Context, prefix string, limit int) ([]Species, error) {
	if limit <= 0 {
		limit = -1
	}
	p := escapeLike(strings.TrimSpace(prefix)) + "%"
	return s.query(ctx,
		`SELECT `+speciesColumns+` FROM species
		 WHERE scientific_name LIKE ? ESCAPE '\' OR common_name LIKE ? ESCAPE '\'
		 ORDER BY scientific_name LIMIT ?`, p, p, limit)
}

// ByFamily returns the species of one family.
func (s *Store) ByFamily(ctx context.Context, family string) ([]Species, error) {
	return s.query(ctx,
		`SELECT `+speciesColumns+` FROM species WHERE family = ? COLLATE NOCASE ORDER BY scientific_name`, family)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Species, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing species: %w", err)
	}
	defer rows.Close()

	var out []Species
	for rows.Next() {
		sp, err := scanSpecies(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning species: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CreateLocation inserts a location, or returns the existing one with the
// same name.
func (s *Store) CreateLocation(ctx context.Context, l *Location) error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("location name is required")
	}
	if l.Latitude < -90 || l.Latitude > 90 || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("coordinates out of range: (%g, %g)", l.Latitude, l.Longitude)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO geographic_locations (latitude, longitude, location_name, source, observation_date)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(location_name) DO NOTHING`,
		l.Latitude, l.Longitude, l.Name, l.Source, l.ObservationDate,
	)
	if err != nil {
		return fmt.Errorf("creating location: %w", err)
	}
	return s.db.QueryRowContext(ctx,
		`SELECT id FROM geographic_locations WHERE location_name = ?`, l.Name).Scan(&l.ID)
}

// Link records that a species was observed at a location. Linking twice is a
// no-op.
func (s *Store) Link(ctx context.Context, speciesID, locationID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO species_locations (species_id, location_id) VALUES (?, ?)
		 ON CONFLICT(species_id, location_id) DO NOTHING`,
		speciesID, locationID,
	)
	if err != nil {
		return fmt.Errorf("linking species %d to location %d: %w", speciesID, locationID, err)
	}
	return nil
}

// Locations returns the locations where a species was observed.
func (s *Store) Locations(ctx context.Context, speciesID int64) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.id, l.latitude, l.longitude, l.location_name, l.source, l.observation_date
		 FROM geographic_locations l
		 JOIN species_locations sl ON sl.location_id = l.id
		 WHERE sl.species_id = ? ORDER BY l.location_name`, speciesID)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	out := []Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLocation(row interface{ Scan(...any) error }) (Location, error) {
	var l Location
	var observed sql.NullTime
	if err := row.Scan(&l.ID, &l.Latitude, &l.Longitude, &l.Name, &l.Source, &observed); err != nil {
		return l, fmt.Errorf("scanning location: %w", err)
	}
	if observed.Valid {
		t := observed.Time
		l.ObservationDate = &t
	}
	return l, nil
}

// AllLocations returns every location with the number of species observed there.
func (s *Store) AllLocations(ctx context.Context) ([]LocationCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.id, l.latitude, l.longitude, l.location_name, l.source, l.observation_date,
		        COUNT(sl.species_id)
		 FROM geographic_locations l
		 LEFT JOIN species_locations sl ON sl.location_id = l.id
		 GROUP BY l.id ORDER BY l.location_name`)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	out := []LocationCount{}
	for rows.Next() {
		var lc LocationCount
		var observed sql.NullTime
		if err := rows.Scan(&lc.ID, &lc.Latitude, &lc.Longitude, &lc.Name, &lc.Source, &observed, &lc.SpeciesCount); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		if observed.Valid {
			t := observed.Time
			lc.ObservationDate = &t
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// SpeciesAt returns the species observed at a named location.
func (s *Store) SpeciesAt(ctx context.Context, locationName string) ([]Species, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM geographic_locations WHERE location_name = ? COLLATE NOCASE`, locationName).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return s.query(ctx,
		`SELECT s.id, s.scientific_name, s.common_name, s.family, s.description, s.date_added
		 FROM species s JOIN species_locations sl ON sl.species_id = s.id
		 WHERE sl.location_id = ? ORDER BY s.scientific_name`, id)
}

// AddSequence stores a DNA sequence. LengthBP defaults to the sequence length.
func (s *Store) AddSequence(ctx context.Context, seq *Sequence) error {
	if seq.GenBankAccession == "" {
		return errors.New("genbank accession is required")
	}
	if seq.Sequence == "" {
		return errors.New("sequence is required")
	}
	if seq.LengthBP == 0 {
		seq.LengthBP = len(seq.Sequence)
	}
	if seq.DateUpdated.IsZero() {
		seq.DateUpdated = time.Now().UTC()
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO dna_sequences (species_id, genbank_accession, gene, sequence, length_bp, source, date_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(genbank_accession) DO UPDATE SET
		   gene=excluded.gene, sequence=excluded.sequence, length_bp=excluded.length_bp,
		   source=excluded.source, date_updated=excluded.date_updated
		 RETURNING id`,
		seq.SpeciesID, seq.GenBankAccession, seq.Gene, seq.Sequence, seq.LengthBP, seq.Source, seq.DateUpdated,
	).Scan(&seq.ID)
	if err != nil {
		return fmt.Errorf("adding sequence %s: %w", seq.GenBankAccession, err)
	}
	return nil
}

// Sequences returns the DNA sequences of a species.
func (s *Store) Sequences(ctx context.Context, speciesID int64) ([]Sequence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, species_id, genbank_accession, gene, sequence, length_bp, source, date_updated
		 FROM dna_sequences WHERE species_id = ? ORDER BY genbank_accession`, speciesID)
	if err != nil {
		return nil, fmt.Errorf("listing sequences: %w", err)
	}
	defer rows.Close()

	out := []Sequence{}
	for rows.Next() {
		var q Sequence
		if err := rows.Scan(&q.ID, &q.SpeciesID, &q.GenBankAccession, &q.Gene, &q.Sequence, &q.LengthBP, &q.Source, &q.DateUpdated); err != nil {
			return nil, fmt.Errorf("scanning sequence: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Count returns the number of species in the dataset.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM species`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting species: %w", err)
	}
	return n, nil
}
