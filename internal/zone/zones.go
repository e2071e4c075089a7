// Package zone holds the static registry of monitored Mumbai localities.
package zone

// Zone is a monitored locality. Zones are fixed at compile time and never
// created or destroyed at runtime.
type Zone struct {
	Name string
	Lat  float64
	Lon  float64
}

// Count is the number of registered zones.
const Count = 18

// registry lists the 18 monitored localities, south to north.
var registry = []Zone{
	{Name: "Colaba", Lat: 18.9067, Lon: 72.8147},
	{Name: "Fort", Lat: 18.9353, Lon: 72.8357},
	{Name: "Marine Lines", Lat: 18.9430, Lon: 72.8238},
	{Name: "Girgaon", Lat: 18.9540, Lon: 72.8172},
	{Name: "Byculla", Lat: 18.9793, Lon: 72.8312},
	{Name: "Parel", Lat: 19.0086, Lon: 72.8370},
	{Name: "Worli", Lat: 19.0176, Lon: 72.8172},
	{Name: "Dadar", Lat: 19.0178, Lon: 72.8478},
	{Name: "Mahim", Lat: 19.0410, Lon: 72.8427},
	{Name: "Bandra", Lat: 19.0596, Lon: 72.8295},
	{Name: "Khar", Lat: 19.0726, Lon: 72.8369},
	{Name: "Santacruz", Lat: 19.0790, Lon: 72.8410},
	{Name: "Vile Parle", Lat: 19.0968, Lon: 72.8517},
	{Name: "Andheri", Lat: 19.1136, Lon: 72.8697},
	{Name: "Jogeshwari", Lat: 19.1348, Lon: 72.8496},
	{Name: "Goregaon", Lat: 19.1663, Lon: 72.8526},
	{Name: "Malad", Lat: 19.1874, Lon: 72.8484},
	{Name: "Borivali", Lat: 19.2307, Lon: 72.8567},
}

// All returns a copy of the zone registry. Callers may reorder the returned
// slice without affecting the registry.
func All() []Zone {
	zones := make([]Zone, len(registry))
	copy(zones, registry)
	return zones
}

// ByName looks up a zone by its exact name.
func ByName(name string) (Zone, bool) {
	for _, z := range registry {
		if z.Name == name {
			return z, true
		}
	}
	return Zone{}, false
}
