package climate

import (
	"fmt"
	"sort"
)

// Conversion is the unit conversion applied to a variable's final series.
type Conversion string

const (
	ConversionNone          Conversion = "none"
	ConversionKelvinCelsius Conversion = "kelvin_to_celsius"
	ConversionPerHour       Conversion = "per_second_to_per_hour"
)

const (
	kelvinOffset   = 273.15
	secondsPerHour = 3600
)

// Apply converts every value of s in place.
func (c Conversion) Apply(s *HourlySeries) {
	for i := range s {
		switch c {
		case ConversionKelvinCelsius:
			s[i] -= kelvinOffset
		case ConversionPerHour:
			s[i] *= secondsPerHour
		}
	}
}

// Family is a MERRA-2 dataset collection: the archive directory and the
// short product code embedded in granule names.
type Family struct {
	Collection string `json:"collection"`
	Code       string `json:"code"`
}

// Variant is the collection-specific part of a granule filename.
func (f Family) Variant() string {
	return "tavg1_2d_" + f.Code + "_Nx"
}

var (
	familySLV = Family{Collection: "M2T1NXSLV.5.12.4", Code: "slv"}
	familyFLX = Family{Collection: "M2T1NXFLX.5.12.4", Code: "flx"}
	familyAER = Family{Collection: "M2T1NXAER.5.12.4", Code: "aer"}
)

// Variable is a catalog entry.
type Variable struct {
	ID         string     `json:"id"`
	Family     Family     `json:"family"`
	Conversion Conversion `json:"conversion"`
	Unit       string     `json:"unit"`
}

var catalog = map[string]Variable{
	"T2M":     {ID: "T2M", Family: familySLV, Conversion: ConversionKelvinCelsius, Unit: "degC"},
	"U50M":    {ID: "U50M", Family: familySLV, Conversion: ConversionNone, Unit: "m s-1"},
	"V50M":    {ID: "V50M", Family: familySLV, Conversion: ConversionNone, Unit: "m s-1"},
	"PRECTOT": {ID: "PRECTOT", Family: familyFLX, Conversion: ConversionPerHour, Unit: "mm h-1"},
	"PRECSNO": {ID: "PRECSNO", Family: familyFLX, Conversion: ConversionPerHour, Unit: "mm h-1"},
	"DUSMASS": {ID: "DUSMASS", Family: familyAER, Conversion: ConversionNone, Unit: "kg m-2"},
}

// Resolve looks up a variable by its archive identifier.
func Resolve(id string) (Variable, error) {
	v, ok := catalog[id]
	if !ok {
		return Variable{}, fmt.Errorf("%w: %q", ErrUnknownVariable, id)
	}
	return v, nil
}

// Variables returns every catalog entry ordered by identifier.
func Variables() []Variable {
	out := make([]Variable, 0, len(catalog))
	for _, v := range catalog {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Kind is a variable name accepted at the request boundary.
type Kind string

const (
	KindTemperature Kind = "Temperature"
	KindRainfall    Kind = "Rainfall"
	KindSnowfall    Kind = "Snowfall"
	KindDust        Kind = "Dust"
	KindWind        Kind = "Wind"
)

type kindEntry struct {
	variable string
	key      string
}

var kinds = map[Kind]kindEntry{
	KindTemperature: {variable: "T2M", key: "temperature"},
	KindRainfall:    {variable: "PRECTOT", key: "rainfall"},
	KindSnowfall:    {variable: "PRECSNO", key: "snowfall"},
	KindDust:        {variable: "DUSMASS", key: "dust"},
	KindWind:        {variable: "V50M", key: "wind"},
}

// VariableFor maps a request kind to its catalog variable and response key.
// ok is false for kinds outside the fixed set.
func VariableFor(k Kind) (variableID, responseKey string, ok bool) {
	e, ok := kinds[k]
	return e.variable, e.key, ok
}
