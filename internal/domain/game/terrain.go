package game

// TerrainAt derives the terrain kind for a tile. The grid itself is owned by
// the map collaborator; this bucketing only has to be stable per coordinate so
// movement delays stay reproducible.
func TerrainAt(pos Position) TerrainType {
	h := pos.X*73856093 ^ pos.Y*19349663
	if h < 0 {
		h = -h
	}
	switch h % 5 {
	case 0:
		return TerrainMountain
	case 1:
		return TerrainRiver
	default:
		return TerrainPlains
	}
}
