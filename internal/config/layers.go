// SPDX-License-Identifier: MIT

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// LayerInfo describes one source layer of the upstream tile set: its name
// inside the vector tiles and the geometry kind worth extracting from it.
type LayerInfo struct {
	Name        string `json:"name"`
	Geometry    string `json:"geometry"` // point|line|polygon
	Description string `json:"description,omitempty"`
}

// Catalog is the set of known source layers.
type Catalog struct {
	layers map[string]LayerInfo
}

// catalogFile is the on-disk JSON shape of a layer catalog.
type catalogFile struct {
	Layers []LayerInfo `json:"layers"`
}

// DefaultCatalog returns the built-in catalog for the GSI experimental
// vector tile layer set.
func DefaultCatalog() *Catalog {
	layers := []LayerInfo{
		{Name: "boundary", Geometry: "line", Description: "administrative boundaries"},
		{Name: "building", Geometry: "polygon", Description: "building footprints"},
		{Name: "coastline", Geometry: "line", Description: "coastlines"},
		{Name: "contour", Geometry: "line", Description: "elevation contours"},
		{Name: "elevation", Geometry: "point", Description: "spot elevations"},
		{Name: "label", Geometry: "point", Description: "place name annotations"},
		{Name: "landforma", Geometry: "polygon", Description: "landform areas"},
		{Name: "landforml", Geometry: "line", Description: "landform lines"},
		{Name: "landformp", Geometry: "point", Description: "landform points"},
		{Name: "railway", Geometry: "line", Description: "railways"},
		{Name: "river", Geometry: "line", Description: "rivers and streams"},
		{Name: "road", Geometry: "line", Description: "road centerlines"},
		{Name: "searoute", Geometry: "line", Description: "sea routes"},
		{Name: "structurea", Geometry: "polygon", Description: "structure areas"},
		{Name: "structurel", Geometry: "line", Description: "structure lines"},
		{Name: "symbol", Geometry: "point", Description: "map symbols"},
		{Name: "transl", Geometry: "line", Description: "transmission lines"},
		{Name: "transp", Geometry: "point", Description: "transport points"},
		{Name: "waterarea", Geometry: "polygon", Description: "water areas"},
		{Name: "wstructurea", Geometry: "polygon", Description: "water structure areas"},
	}
	return newCatalog(layers)
}

func newCatalog(layers []LayerInfo) *Catalog {
	m := make(map[string]LayerInfo, len(layers))
	for _, l := range layers {
		m[l.Name] = l
	}
	return &Catalog{layers: m}
}

// LoadCatalog reads a catalog from a JSON file and validates every entry.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-controlled configuration path
	if err != nil {
		return nil, fmt.Errorf("read layer catalog: %w", err)
	}

	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse layer catalog %s: %w", path, err)
	}
	if len(f.Layers) == 0 {
		return nil, fmt.Errorf("layer catalog %s contains no layers", path)
	}

	for _, l := range f.Layers {
		if strings.TrimSpace(l.Name) == "" {
			return nil, fmt.Errorf("layer catalog %s: layer with empty name", path)
		}
		switch l.Geometry {
		case "point", "line", "polygon":
		default:
			return nil, fmt.Errorf("layer catalog %s: layer %q has unknown geometry kind %q", path, l.Name, l.Geometry)
		}
	}

	return newCatalog(f.Layers), nil
}

// Lookup returns the catalog entry for a layer name.
func (c *Catalog) Lookup(name string) (LayerInfo, bool) {
	l, ok := c.layers[name]
	return l, ok
}

// Layers returns all entries sorted by name.
func (c *Catalog) Layers() []LayerInfo {
	out := make([]LayerInfo, 0, len(c.layers))
	for _, l := range c.layers {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of layers in the catalog.
func (c *Catalog) Len() int { return len(c.layers) }
