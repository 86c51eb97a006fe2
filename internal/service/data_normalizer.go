package service

import (
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/EaziLuizi/raceradar/internal/models"
)

// DataNormalizer cleans records from hand-maintained catalogs before import
type DataNormalizer struct {
	provinceMap map[string]models.Province
	raceTypeMap map[string]models.RaceType
	logger      logrus.FieldLogger
}

// NewDataNormalizer creates a new data normalizer
func NewDataNormalizer(logger logrus.FieldLogger) *DataNormalizer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DataNormalizer{
		provinceMap: buildProvinceMap(),
		raceTypeMap: buildRaceTypeMap(),
		logger:      logger,
	}
}

// NormalizeRace returns a cleaned copy of race. Unknown codes survive
// so validation can report them.
func (n *DataNormalizer) NormalizeRace(race models.RaceRecord) models.RaceRecord {
	race.Name = sanitizeText(race.Name)
	race.LocationCity = sanitizeText(race.LocationCity)
	race.Terrain = strings.ToLower(sanitizeText(race.Terrain))

	race.Slug = strings.TrimSpace(race.Slug)
	if race.Slug == "" && race.Name != "" {
		race.Slug = Slugify(race.Name)
		n.logger.WithFields(logrus.Fields{
			"name": race.Name,
			"slug": race.Slug,
		}).Debug("Derived slug from name")
	}

	race.LocationProvince = n.normalizeProvince(race.LocationProvince)
	race.RaceType = n.normalizeRaceType(race.RaceType)
	race.Difficulty = models.Difficulty(strings.ToLower(strings.TrimSpace(string(race.Difficulty))))
	race.Status = models.Status(strings.ToLower(strings.TrimSpace(string(race.Status))))
	if race.Status == "" {
		race.Status = models.StatusActive
	}

	if len(race.Distances) > 0 {
		distances := make([]models.Distance, 0, len(race.Distances))
		for _, d := range race.Distances {
			d.Label = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(d.Label)), " ", "")
			if d.Label == "" {
				continue
			}
			distances = append(distances, d)
		}
		race.Distances = distances
	}

	return race
}

func (n *DataNormalizer) normalizeProvince(p models.Province) models.Province {
	key := strings.ToLower(sanitizeText(string(p)))
	if canonical, ok := n.provinceMap[key]; ok {
		return canonical
	}
	return models.Province(strings.TrimSpace(string(p)))
}

func (n *DataNormalizer) normalizeRaceType(t models.RaceType) models.RaceType {
	key := strings.ToLower(sanitizeText(string(t)))
	if canonical, ok := n.raceTypeMap[key]; ok {
		return canonical
	}
	return models.RaceType(key)
}

// Slugify lowercases s, strips accents and joins words with hyphens
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// sanitizeText trims and collapses internal whitespace
func sanitizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func buildProvinceMap() map[string]models.Province {
	m := map[string]models.Province{
		"wc":            models.ProvinceWesternCape,
		"gp":            models.ProvinceGauteng,
		"gt":            models.ProvinceGauteng,
		"kzn":           models.ProvinceKwaZuluNatal,
		"kwazulu natal": models.ProvinceKwaZuluNatal,
		"ec":            models.ProvinceEasternCape,
		"mp":            models.ProvinceMpumalanga,
		"lp":            models.ProvinceLimpopo,
		"nw":            models.ProvinceNorthWest,
		"fs":            models.ProvinceFreeState,
		"nc":            models.ProvinceNorthernCape,
	}
	for _, p := range models.Provinces {
		m[strings.ToLower(string(p))] = p
	}
	return m
}

func buildRaceTypeMap() map[string]models.RaceType {
	m := map[string]models.RaceType{
		"trail running":   models.RaceTypeTrail,
		"road running":    models.RaceTypeRoad,
		"ultra marathon":  models.RaceTypeUltra,
		"ultramarathon":   models.RaceTypeUltra,
		"road cycling":    models.RaceTypeCycling,
		"mountain bike":   models.RaceTypeMTB,
		"mountain biking": models.RaceTypeMTB,
		"obstacle course": models.RaceTypeObstacle,
		"ocr":             models.RaceTypeObstacle,
		"open water":      models.RaceTypeSwimming,
	}
	for _, t := range models.RaceTypes {
		m[string(t)] = t
	}
	return m
}
