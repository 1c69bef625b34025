// Package catalog serves the static reference data the booking surface
// needs: cities, amenities, bus types and seat types.  The data ships
// embedded in the binary so lookups never hit the database.
package catalog

import (
    "embed"
    "encoding/json"
    "fmt"
)

//go:embed data/*.json
var dataFS embed.FS

type City struct {
    ID    string `json:"id"`
    Name  string `json:"name"`
    Slug  string `json:"slug"`
    State string `json:"state"`
}

type Amenity struct {
    ID   string `json:"id"`
    Name string `json:"name"`
    Icon string `json:"icon"`
}

type BusType struct {
    ID        string `json:"id"`
    Name      string `json:"name"`
    IsAC      bool   `json:"is_ac"`
    IsSleeper bool   `json:"is_sleeper"`
}

type SeatType struct {
    ID         string  `json:"id"`
    Name       string  `json:"name"`
    Multiplier float64 `json:"multiplier"`
}

// Catalog holds the decoded reference data plus lookup indexes.
type Catalog struct {
    Cities    []City
    Amenities []Amenity
    BusTypes  []BusType
    SeatTypes []SeatType

    citiesBySlug map[string]City
    citiesByID   map[string]City
    amenityByID  map[string]Amenity
}

// Load decodes the embedded data files.  It fails only when the
// embedded payload is malformed, which is a build defect.
func Load() (*Catalog, error) {
    c := &Catalog{
        citiesBySlug: make(map[string]City),
        citiesByID:   make(map[string]City),
        amenityByID:  make(map[string]Amenity),
    }
    if err := decode("data/cities.json", &c.Cities); err != nil {
        return nil, err
    }
    if err := decode("data/amenities.json", &c.Amenities); err != nil {
        return nil, err
    }
    if err := decode("data/bus_types.json", &c.BusTypes); err != nil {
        return nil, err
    }
    if err := decode("data/seat_types.json", &c.SeatTypes); err != nil {
        return nil, err
    }
    for _, city := range c.Cities {
        c.citiesBySlug[city.Slug] = city
        c.citiesByID[city.ID] = city
    }
    for _, am := range c.Amenities {
        c.amenityByID[am.ID] = am
    }
    return c, nil
}

func decode(name string, out interface{}) error {
    raw, err := dataFS.ReadFile(name)
    if err != nil {
        return fmt.Errorf("read %s: %w", name, err)
    }
    if err := json.Unmarshal(raw, out); err != nil {
        return fmt.Errorf("decode %s: %w", name, err)
    }
    return nil
}

// CityBySlug resolves a URL slug like "mumbai" to its city.
func (c *Catalog) CityBySlug(slug string) (City, bool) {
    city, ok := c.citiesBySlug[slug]
    return city, ok
}

// CityByID resolves a city id to its city.
func (c *Catalog) CityByID(id string) (City, bool) {
    city, ok := c.citiesByID[id]
    return city, ok
}

// AmenityByID resolves an amenity id.
func (c *Catalog) AmenityByID(id string) (Amenity, bool) {
    am, ok := c.amenityByID[id]
    return am, ok
}
