package orchestrator

import (
	"strings"

	"github.com/intellecta/intellecta/internal/models"
)

// KeywordTable maps domain terms to structured-query fragments. Matches are
// attached to responses as auxiliary metadata and never substitute for
// retrieval.
type KeywordTable struct {
	mappings []models.KeywordMapping
}

// NewKeywordTable builds a table over the given mappings. The table is
// immutable after construction.
func NewKeywordTable(mappings []models.KeywordMapping) *KeywordTable {
	return &KeywordTable{mappings: mappings}
}

// DefaultKeywordTable returns the built-in energy-domain term table.
func DefaultKeywordTable() *KeywordTable {
	return NewKeywordTable([]models.KeywordMapping{
		{
			Keyword:     "generation capacity",
			SQL:         "SELECT plant_name, capacity_mw FROM plants ORDER BY capacity_mw DESC",
			Description: "Installed generation capacity by plant",
			DataFormat:  "MW per plant",
		},
		{
			Keyword:     "peak demand",
			SQL:         "SELECT region, MAX(demand_mw) AS peak_mw FROM demand_hourly GROUP BY region",
			Description: "Peak electricity demand by region",
			DataFormat:  "MW per region",
		},
		{
			Keyword:     "fuel mix",
			SQL:         "SELECT fuel_type, SUM(generation_mwh) FROM generation GROUP BY fuel_type",
			Description: "Generation share by fuel type",
			DataFormat:  "MWh per fuel type",
		},
		{
			Keyword:     "outage",
			SQL:         "SELECT plant_name, start_time, end_time, cause FROM outages WHERE status = 'active'",
			Description: "Active generation and transmission outages",
			DataFormat:  "outage records",
		},
		{
			Keyword:     "maintenance schedule",
			SQL:         "SELECT asset_id, planned_start, planned_end FROM maintenance ORDER BY planned_start",
			Description: "Planned maintenance windows",
			DataFormat:  "date ranges per asset",
		},
		{
			Keyword:     "transmission loss",
			SQL:         "SELECT line_id, loss_pct FROM transmission_lines ORDER BY loss_pct DESC",
			Description: "Technical losses per transmission line",
			DataFormat:  "percent per line",
		},
		{
			Keyword:     "electricity price",
			SQL:         "SELECT market, AVG(price_per_mwh) FROM prices_daily GROUP BY market",
			Description: "Average wholesale electricity prices",
			DataFormat:  "currency per MWh",
		},
		{
			Keyword:     "renewable share",
			SQL:         "SELECT year, renewable_mwh * 100.0 / total_mwh AS share FROM annual_generation",
			Description: "Renewable share of annual generation",
			DataFormat:  "percent per year",
		},
		{
			Keyword:     "emissions",
			SQL:         "SELECT plant_name, co2_tons FROM emissions_annual ORDER BY co2_tons DESC",
			Description: "Annual CO2 emissions by plant",
			DataFormat:  "tons per plant",
		},
		{
			Keyword:     "load factor",
			SQL:         "SELECT plant_name, avg_output_mw / capacity_mw AS load_factor FROM plant_stats",
			Description: "Capacity utilization by plant",
			DataFormat:  "ratio per plant",
		},
	})
}

// Match scans query case-insensitively and returns the matched mappings,
// or nil when no term matches.
func (t *KeywordTable) Match(query string) *models.KeywordInfo {
	lower := strings.ToLower(query)
	var matched []models.KeywordMapping
	for _, m := range t.mappings {
		if strings.Contains(lower, m.Keyword) {
			matched = append(matched, m)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return &models.KeywordInfo{Count: len(matched), Mappings: matched}
}
