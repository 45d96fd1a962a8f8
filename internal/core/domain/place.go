package domain

import (
	"fmt"
	"math"
	"strings"
)

// Address holds the structured address parts a geocoder may return.
type Address struct {
	Name         string `json:"name,omitempty"`
	Attraction   string `json:"attraction,omitempty"`
	Building     string `json:"building,omitempty"`
	Road         string `json:"road,omitempty"`
	Pedestrian   string `json:"pedestrian,omitempty"`
	HouseNumber  string `json:"house_number,omitempty"`
	City         string `json:"city,omitempty"`
	Town         string `json:"town,omitempty"`
	Village      string `json:"village,omitempty"`
	Suburb       string `json:"suburb,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	State        string `json:"state,omitempty"`
	Region       string `json:"region,omitempty"`
}

// PlaceResult is one geocoding match.
type PlaceResult struct {
	ID          int64      `json:"place_id"`
	DisplayName string     `json:"display_name"`
	Location    Coordinate `json:"location"`
	Address     *Address   `json:"address,omitempty"`
	DistanceKm  float64    `json:"distance_km"` // from the search reference point
}

// Title is the primary label shown for the result.
func (p PlaceResult) Title() string {
	if p.Address != nil {
		a := p.Address
		if t := firstNonEmpty(a.Name, a.Attraction, a.Building); t != "" {
			return t
		}
		street := joinNonEmpty(" ", firstNonEmpty(a.Road, a.Pedestrian), a.HouseNumber)
		if street != "" {
			return street
		}
	}
	head, _ := splitDisplayName(p.DisplayName)
	return head
}

// Subtitle is the secondary label: locality and state when an address is
// known, otherwise the rest of the display name.
func (p PlaceResult) Subtitle() string {
	if p.Address == nil {
		_, rest := splitDisplayName(p.DisplayName)
		return rest
	}
	a := p.Address
	locality := firstNonEmpty(a.City, a.Town, a.Village, a.Suburb, a.Municipality)
	return joinNonEmpty(", ", locality, firstNonEmpty(a.State, a.Region))
}

// DistanceLabel renders the distance rounded to whole kilometres.
func (p PlaceResult) DistanceLabel() string {
	return fmt.Sprintf("%d km", int64(math.Round(p.DistanceKm)))
}

func splitDisplayName(s string) (head, rest string) {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	head = parts[0]
	if len(parts) > 1 {
		rest = strings.Join(parts[1:], ", ")
	}
	return head, rest
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, vals ...string) string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}
