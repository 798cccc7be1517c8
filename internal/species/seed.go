package species

import (
	"context"
	"fmt"
	"time"
)

// SeedSpecies is the bundled dataset of Indonesian endemic species.
var SeedSpecies = []Species{
	{ScientificName: "Nisaetus bartelsi", CommonName: "Elang Jawa", Family: "Accipitridae", Description: "Burung elang endemik Jawa, terancam punah."},
	{ScientificName: "Panthera tigris sumatrae", CommonName: "Harimau Sumatera", Family: "Felidae", Description: "Kucing besar endemik Sumatera, kritis."},
	{ScientificName: "Pongo pygmaeus", CommonName: "Orangutan Kalimantan", Family: "Hominidae", Description: "Primata endemik Kalimantan, terancam."},
	{ScientificName: "Rhinoceros sondaicus", CommonName: "Badak Jawa", Family: "Rhinocerotidae", Description: "Mamalia besar terancam punah di Jawa."},
	{ScientificName: "Dicerorhinus sumatrensis", CommonName: "Badak Sumatera", Family: "Rhinocerotidae", Description: "Badak kecil endemik Sumatera, kritis."},
	{ScientificName: "Probosciger aterrimus", CommonName: "Kakatua Raja", Family: "Cacatuidae", Description: "Burung kakatua besar endemik Papua."},
	{ScientificName: "Tarsius tarsier", CommonName: "Tarsius Sulawesi", Family: "Tarsiidae", Description: "Primata kecil endemik Sulawesi."},
	{ScientificName: "Cacatua sulphurea", CommonName: "Kakatua Jambul Kuning", Family: "Cacatuidae", Description: "Kakatua endemik Sulawesi dan Nusa Tenggara."},
	{ScientificName: "Bos javanicus", CommonName: "Banteng Jawa", Family: "Bovidae", Description: "Sapi liar endemik Jawa, terancam."},
	{ScientificName: "Varanus komodoensis", CommonName: "Komodo", Family: "Varanidae", Description: "Kadal terbesar di dunia, endemik Nusa Tenggara."},
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// SeedLocations are the observation sites of the bundled dataset.
var SeedLocations = []Location{
	{Latitude: -6.7527, Longitude: 106.7314, Name: "Taman Nasional Gunung Halimun-Salak", Source: "GBIF", ObservationDate: day(2020, 1, 15)},
	{Latitude: -6.8033, Longitude: 106.9905, Name: "Taman Nasional Gede Pangrango", Source: "GBIF", ObservationDate: day(2021, 3, 22)},
	{Latitude: 3.5894, Longitude: 98.6722, Name: "Taman Nasional Gunung Leuser", Source: "GBIF", ObservationDate: day(2019, 7, 10)},
	{Latitude: 1.2596, Longitude: 114.8186, Name: "Taman Nasional Tanjung Puting", Source: "GBIF", ObservationDate: day(2021, 6, 18)},
	{Latitude: -7.8014, Longitude: 110.5041, Name: "Taman Nasional Ujung Kulon", Source: "GBIF", ObservationDate: day(2022, 2, 14)},
	{Latitude: 4.9530, Longitude: 97.3152, Name: "Aceh", Source: "GBIF", ObservationDate: day(2020, 9, 9)},
	{Latitude: -2.3456, Longitude: 140.5167, Name: "Jayapura, Papua", Source: "GBIF", ObservationDate: day(2021, 8, 25)},
	{Latitude: -0.8613, Longitude: 119.9213, Name: "Taman Nasional Lore Lindu", Source: "GBIF", ObservationDate: day(2021, 12, 3)},
	{Latitude: -8.4667, Longitude: 117.4333, Name: "Pulau Komodo, Taman Nasional Komodo", Source: "GBIF", ObservationDate: day(2020, 5, 10)},
	{Latitude: -7.3167, Longitude: 110.1833, Name: "Taman Nasional Baluran", Source: "GBIF", ObservationDate: day(2021, 9, 12)},
}

type seedSequence struct {
	species string
	Sequence
}

var seedSequences = []seedSequence{
	{"Nisaetus bartelsi", Sequence{GenBankAccession: "MT158243.1", Gene: "COX1", LengthBP: 625, Source: "NCBI",
		Sequence: "ggcatagttggcaccgcccttagcctacttatccgcgcagaactcggccaaccgggtaccctactgggcgatgaccaaatctacaatgtagtcgtcactgcccatgctttcgtaataatcttcttcatagtcataccaatcataatcggaggctttggaaactgacttgtcccactcataatcggcgcccctgacatagccttcccacgcataaacaacataagcttctgactacttcccccatccttcctcctactagcctcttcaacagtagaagccggggctggcaccggatgaacggtctatcccccactagctggcaacatagcccatgctggcgcctcagtagacttggccatcttttctctacatctagcaggaatctcatccatcttaggggcaattaacttcatcacgaccgctattaacataaaacctccagccctctctcaataccaaacacccctattcgtctgatctgtactcatcaccgctgtcctactactactctcactcccgtcctagctgccggcattactatgctactcacagaccgaaacctcaacacaacattcttcgaccccgccggcggcggtgacccagtcctgtaccaacacctct"}},
	{"Panthera tigris sumatrae", Sequence{GenBankAccession: "KF564297.1", Gene: "COX1", Sequence: "atgtt...", LengthBP: 658, Source: "NCBI"}},
	{"Pongo pygmaeus", Sequence{GenBankAccession: "NC_021769.1", Gene: "COX1", Sequence: "ggtat...", LengthBP: 681, Source: "NCBI"}},
	{"Rhinoceros sondaicus", Sequence{GenBankAccession: "JX914863.1", Gene: "COX1", Sequence: "tgcga...", LengthBP: 655, Source: "NCBI"}},
	{"Dicerorhinus sumatrensis", Sequence{GenBankAccession: "FJ347896.1", Gene: "COX1", Sequence: "agtcc...", LengthBP: 672, Source: "NCBI"}},
	{"Probosciger aterrimus", Sequence{GenBankAccession: "KM096453.1", Gene: "COX1", Sequence: "cgtag...", LengthBP: 694, Source: "NCBI"}},
	{"Tarsius tarsier", Sequence{GenBankAccession: "EU784123.1", Gene: "COX1", Sequence: "agctg...", LengthBP: 657, Source: "NCBI"}},
	{"Cacatua sulphurea", Sequence{GenBankAccession: "DQ123456.1", Gene: "COX1", Sequence: "gctaa...", LengthBP: 709, Source: "NCBI"}},
	{"Bos javanicus", Sequence{GenBankAccession: "AF497803.1", Gene: "ND2", Sequence: "ttagc...", LengthBP: 1041, Source: "NCBI"}},
	{"Varanus komodoensis", Sequence{GenBankAccession: "MK628540.1", Gene: "COX1", Sequence: "cctag...", LengthBP: 680, Source: "NCBI"}},
}

// seedLinks pairs 1-based indexes into SeedSpecies and SeedLocations.
var seedLinks = [][2]int{
	{1, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 3},
	{5, 6}, {6, 7}, {7, 8}, {9, 10}, {9, 5}, {10, 9},
}

// SeedResult counts what a seed run touched.
type SeedResult struct {
	Species   int
	Locations int
	Sequences int
	Links     int
}

// Seed loads the bundled dataset. Rows are matched on their natural keys, so
// seeding twice adds nothing. progress, when non-nil, is called once per row.
func (s *Store) Seed(ctx context.Context, progress func(kind, name string)) (SeedResult, error) {
	var res SeedResult
	note := func(kind, name string) {
		if progress != nil {
			progress(kind, name)
		}
	}

	speciesIDs := make([]int64, len(SeedSpecies))
	byName := make(map[string]int64, len(SeedSpecies))
	for i, sp := range SeedSpecies {
		if _, err := s.Create(ctx, &sp); err != nil {
			return res, fmt.Errorf("seeding species %s: %w", sp.ScientificName, err)
		}
		speciesIDs[i] = sp.ID
		byName[sp.ScientificName] = sp.ID
		res.Species++
		note("species", sp.ScientificName)
	}

	locationIDs := make([]int64, len(SeedLocations))
	for i, l := range SeedLocations {
		if err := s.CreateLocation(ctx, &l); err != nil {
			return res, fmt.Errorf("seeding location %s: %w", l.Name, err)
		}
		locationIDs[i] = l.ID
		res.Locations++
		note("location", l.Name)
	}

	for _, ss := range seedSequences {
		seq := ss.Sequence
		seq.SpeciesID = byName[ss.species]
		if err := s.AddSequence(ctx, &seq); err != nil {
			return res, err
		}
		res.Sequences++
		note("sequence", seq.GenBankAccession)
	}

	for _, l := range seedLinks {
		if err := s.Link(ctx, speciesIDs[l[0]-1], locationIDs[l[1]-1]); err != nil {
			return res, err
		}
		res.Links++
		note("link", SeedSpecies[l[0]-1].ScientificName)
	}
	return res, nil
}

// SeedSize is the number of rows a full seed run writes.
func SeedSize() int {
	return len(SeedSpecies) + len(SeedLocations) + len(seedSequences) + len(seedLinks)
}
