package datasource

import (
	"encoding/json"
	"sort"

	"github.com/EaziLuizi/raceradar/internal/models"
)

// decodeRace decodes one catalog row on its own. Fields that fail to decode
// (a "TBC" race date, a non-UUID id) are dropped and returned by name, so one
// bad value costs at most that field. A row missing its name or race date
// afterwards is kept and reported as malformed by the search engine.
func decodeRace(raw json.RawMessage) (models.RaceRecord, []string) {
	var race models.RaceRecord
	if err := json.Unmarshal(raw, &race); err == nil {
		return race, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.RaceRecord{}, []string{"*"}
	}

	var dropped []string
	for key, value := range fields {
		single, _ := json.Marshal(map[string]json.RawMessage{key: value})
		var field models.RaceRecord
		if err := json.Unmarshal(single, &field); err != nil {
			dropped = append(dropped, key)
			delete(fields, key)
		}
	}
	sort.Strings(dropped)

	kept, _ := json.Marshal(fields)
	race = models.RaceRecord{}
	if err := json.Unmarshal(kept, &race); err != nil {
		return models.RaceRecord{}, []string{"*"}
	}
	return race, dropped
}
