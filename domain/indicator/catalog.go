package indicator

// Meta describes one catalog indicator, including the warehouse dimension
// attributes loaded into dim_indicators.
type Meta struct {
	Code        string
	Name        string
	Category    string
	Unit        string
	Description string
}

// Catalog is the fixed set of indicators the pipeline fetches. It is static,
// process-wide and read-only.
var Catalog = []Meta{
	{Code: "NY.GDP.PCAP.KD", Name: "gdp_per_capita", Category: "Economic", Unit: "USD", Description: "GDP per capita in constant 2015 USD"},
	{Code: "SP.POP.TOTL", Name: "population", Category: "Demographic", Unit: "People", Description: "Total population"},
	{Code: "NY.GDP.MKTP.KD.ZG", Name: "gdp_growth", Category: "Economic", Unit: "Percent", Description: "Annual GDP growth rate"},
	{Code: "SL.UEM.TOTL.ZS", Name: "unemployment_rate", Category: "Social", Unit: "Percent", Description: "Unemployment rate of total labor force"},
	{Code: "NV.AGR.TOTL.ZS", Name: "agriculture_pct_gdp", Category: "Economic Structure", Unit: "Percent", Description: "Agriculture value added as % of GDP"},
	{Code: "NV.IND.TOTL.ZS", Name: "industry_pct_gdp", Category: "Economic Structure", Unit: "Percent", Description: "Industry value added as % of GDP"},
}

// CatalogByCode returns the catalog keyed by indicator code
func CatalogByCode() map[string]Meta {
	byCode := make(map[string]Meta, len(Catalog))
	for _, m := range Catalog {
		byCode[m.Code] = m
	}
	return byCode
}

// CatalogByName returns the catalog keyed by indicator name
func CatalogByName() map[string]Meta {
	byName := make(map[string]Meta, len(Catalog))
	for _, m := range Catalog {
		byName[m.Name] = m
	}
	return byName
}
