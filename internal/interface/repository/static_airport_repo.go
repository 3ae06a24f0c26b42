package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/internal/domain/repository"
	"silentskies-service/pkg/logger"
)

// builtinAirports are the airports monitored out of the box.
var builtinAirports = []entity.Airport{
	{ICAO: "EDDB", IATA: "BER", Name: "Berlin Brandenburg", City: "Berlin", Latitude: 52.3667, Longitude: 13.5033, TzName: "Europe/Berlin"},
	{ICAO: "LFPG", IATA: "CDG", Name: "Paris Charles de Gaulle", City: "Paris", Latitude: 49.0097, Longitude: 2.5479, TzName: "Europe/Paris"},
	{ICAO: "EGLL", IATA: "LHR", Name: "London Heathrow", City: "London", Latitude: 51.4700, Longitude: -0.4543, TzName: "Europe/London"},
}

// airportCatalog is the YAML layout of an airports file.
type airportCatalog struct {
	Airports []entity.Airport `yaml:"airports"`
}

// StaticAirportRepository serves airports from memory
type StaticAirportRepository struct {
	airports map[string]*entity.Airport
}

// NewStaticAirportRepository creates a repository over the built-in airports
func NewStaticAirportRepository() *StaticAirportRepository {
	return newStaticAirportRepository(builtinAirports)
}

// LoadStaticAirportRepository reads an airports YAML file
func LoadStaticAirportRepository(path string) (*StaticAirportRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read airports file: %w", err)
	}
	return ParseAirportCatalog(data)
}

// ParseAirportCatalog decodes an airports YAML document
func ParseAirportCatalog(data []byte) (*StaticAirportRepository, error) {
	var catalog airportCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode airports file: %w", err)
	}
	if len(catalog.Airports) == 0 {
		return nil, errors.New("airports file lists no airports")
	}
	for i, a := range catalog.Airports {
		if strings.TrimSpace(a.ICAO) == "" {
			return nil, fmt.Errorf("airport %d has no icao code", i)
		}
	}
	return newStaticAirportRepository(catalog.Airports), nil
}

func newStaticAirportRepository(list []entity.Airport) *StaticAirportRepository {
	r := &StaticAirportRepository{airports: make(map[string]*entity.Airport, len(list))}
	for i := range list {
		a := list[i]
		a.ICAO = strings.ToUpper(strings.TrimSpace(a.ICAO))
		r.airports[a.ICAO] = &a
	}
	return r
}

// GetByICAO finds an airport by its ICAO code
func (r *StaticAirportRepository) GetByICAO(ctx context.Context, icao string) (*entity.Airport, error) {
	a, ok := r.airports[strings.ToUpper(icao)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrAirportNotFound, icao)
	}
	out := *a
	return &out, nil
}

// List returns every airport ordered by ICAO code
func (r *StaticAirportRepository) List(ctx context.Context) ([]*entity.Airport, error) {
	out := make([]*entity.Airport, 0, len(r.airports))
	for _, a := range r.airports {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ICAO < out[j].ICAO })
	return out, nil
}

// ChainedAirportRepository asks each repository in turn
type ChainedAirportRepository struct {
	repos  []repository.AirportRepository
	logger logger.Logger
}

// NewChainedAirportRepository creates a repository consulting repos in order
func NewChainedAirportRepository(logger logger.Logger, repos ...repository.AirportRepository) repository.AirportRepository {
	return &ChainedAirportRepository{repos: repos, logger: logger}
}

// GetByICAO returns the first hit. Lookup failures other than not-found are
// logged and the next repository is tried.
func (r *ChainedAirportRepository) GetByICAO(ctx context.Context, icao string) (*entity.Airport, error) {
	for _, repo := range r.repos {
		a, err := repo.GetByICAO(ctx, icao)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, entity.ErrAirportNotFound) {
			r.logger.Warn("Airport lookup failed", "icao", icao, "error", err)
		}
	}
	return nil, fmt.Errorf("%w: %s", entity.ErrAirportNotFound, icao)
}

// List merges every repository; earlier repositories win on duplicate codes.
func (r *ChainedAirportRepository) List(ctx context.Context) ([]*entity.Airport, error) {
	seen := map[string]bool{}
	var out []*entity.Airport
	var lastErr error
	failed := 0
	for _, repo := range r.repos {
		list, err := repo.List(ctx)
		if err != nil {
			r.logger.Warn("Airport listing failed", "error", err)
			lastErr = err
			failed++
			continue
		}
		for _, a := range list {
			if seen[a.ICAO] {
				continue
			}
			seen[a.ICAO] = true
			out = append(out, a)
		}
	}
	if failed == len(r.repos) && lastErr != nil {
		return nil, lastErr
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ICAO < out[j].ICAO })
	return out, nil
}
