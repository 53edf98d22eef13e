package domain

import "fmt"

const (
	// GridSize is the width and height of every map.
	GridSize = 8
	// MapCount is the size of the map pool.
	MapCount = 20
)

// Terrain classifies a single tile.
type Terrain int

const (
	TerrainPlain Terrain = iota
	TerrainJungle
)

func (t Terrain) String() string {
	if t == TerrainJungle {
		return "jungle"
	}
	return "plain"
}

// mapPool holds the authored maps row by row, top row (y=0) first. '#' is jungle, '.' is plain.
var mapPool = [MapCount][GridSize]string{
	// 0: ring
	{
		"..###...",
		".##.##..",
		"##...##.",
		".#....##",
		"##....#.",
		".##.###.",
		"..###...",
		"...###..",
	},
	// 1: central block
	{
		"........",
		"..####..",
		".######.",
		".######.",
		".######.",
		"..####..",
		"........",
		"........",
	},
	// 2: diagonal bands
	{
		"##....##",
		"###..###",
		".######.",
		"..####..",
		"..####..",
		"...##...",
		"........",
		"........",
	},
	// 3: border jungle
	{
		"########",
		"#......#",
		"#......#",
		"#......#",
		"#......#",
		"#......#",
		"#......#",
		"########",
	},
	// 4: cross
	{
		"...##...",
		"...##...",
		"...##...",
		"########",
		"########",
		"...##...",
		"...##...",
		"...##...",
	},
	// 5: l-shape
	{
		"###.....",
		"###.....",
		"##......",
		"##......",
		"##....##",
		"########",
		".#######",
		"........",
	},
	// 6: diamond
	{
		"...#....",
		"..###...",
		".#####..",
		"#######.",
		".#####..",
		"..###...",
		"...#....",
		"........",
	},
	// 7: river
	{
		"........",
		"##....##",
		"###..###",
		".######.",
		".######.",
		"###..###",
		"##....##",
		"........",
	},
	// 8: horseshoe
	{
		".######.",
		".##..##.",
		".#....#.",
		".#....#.",
		".#....#.",
		".#....#.",
		".##..##.",
		"........",
	},
	// 9: maze corridors
	{
		".#.#.#..",
		".#.#.#..",
		".###.##.",
		"...#..#.",
		"##.##.#.",
		".#..#.#.",
		".######.",
		"........",
	},
	// 10: vertical ellipse
	{
		"...##...",
		"..####..",
		"..####..",
		"..####..",
		"..####..",
		"..####..",
		"...##...",
		"........",
	},
	// 11: triangle
	{
		"........",
		"........",
		"...##...",
		"..####..",
		".######.",
		"########",
		"########",
		"........",
	},
	// 12: s-curve
	{
		"..####..",
		"..##....",
		"..##....",
		"..####..",
		"....##..",
		"....##..",
		"..####..",
		"........",
	},
	// 13: connected strips
	{
		".##..##.",
		".##..##.",
		".######.",
		".##..##.",
		".##..##.",
		".##..##.",
		"........",
		"........",
	},
	// 14: thick diagonal
	{
		"##......",
		"###.....",
		".###....",
		"..###...",
		"...###..",
		"....###.",
		".....###",
		"......##",
	},
	// 15: c-shape
	{
		".#####..",
		".##.....",
		".##.....",
		".##.....",
		".##.....",
		".##.....",
		".#####..",
		"........",
	},
	// 16: split bands
	{
		"########",
		"###.....",
		"........",
		"........",
		"........",
		".....###",
		"########",
		"########",
	},
	// 17: plus thick
	{
		"..####..",
		"..####..",
		"######..",
		"###..###",
		"..######",
		"..####..",
		"........",
		"........",
	},
	// 18: inverted l
	{
		".....###",
		".....###",
		".....###",
		".....###",
		".....###",
		"########",
		"........",
		"........",
	},
	// 19: spiral
	{
		"........",
		".######.",
		".#....#.",
		".#.##.#.",
		".#.##.#.",
		".#....#.",
		".######.",
		"........",
	},
}

// TerrainAt returns the terrain of tile c on map mapIndex.
func TerrainAt(mapIndex int, c Coord) (Terrain, error) {
	if mapIndex < 0 || mapIndex >= MapCount {
		return TerrainPlain, fmt.Errorf("map %d: %w", mapIndex, ErrUnknownMap)
	}
	if !c.InBounds() {
		return TerrainPlain, ErrOutOfBounds
	}
	if mapPool[mapIndex][c.Y][c.X] == '#' {
		return TerrainJungle, nil
	}
	return TerrainPlain, nil
}

// IsJungle reports whether c is an in-bounds jungle tile on the map.
func IsJungle(mapIndex int, c Coord) bool {
	t, err := TerrainAt(mapIndex, c)
	return err == nil && t == TerrainJungle
}

// Cells returns the map flattened to 64 cells indexed y*8+x, 1 marking jungle.
// Session views carry it so clients can render the board and build the map witness.
func Cells(mapIndex int) ([]uint8, error) {
	if mapIndex < 0 || mapIndex >= MapCount {
		return nil, fmt.Errorf("map %d: %w", mapIndex, ErrUnknownMap)
	}
	cells := make([]uint8, 0, GridSize*GridSize)
	for _, row := range mapPool[mapIndex] {
		for i := 0; i < GridSize; i++ {
			if row[i] == '#' {
				cells = append(cells, 1)
			} else {
				cells = append(cells, 0)
			}
		}
	}
	return cells, nil
}

// PlainTiles lists the plain tiles of a map in index order.
func PlainTiles(mapIndex int) []Coord {
	if mapIndex < 0 || mapIndex >= MapCount {
		return nil
	}
	var tiles []Coord
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			if mapPool[mapIndex][y][x] == '.' {
				tiles = append(tiles, Coord{X: x, Y: y})
			}
		}
	}
	return tiles
}
