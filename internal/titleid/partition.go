package titleid

// Partition names one on-disk catalog file.
type Partition int

const (
	None Partition = iota
	Customs
	Dlcs
	Dlcs3DS
	Games
	Games3DS
	GamesWii
	Injections
	Updates
	Updates3DS
)

var partitionNames = map[Partition]string{
	None:       "None",
	Customs:    "Customs",
	Dlcs:       "Dlcs",
	Dlcs3DS:    "Dlcs3DS",
	Games:      "Games",
	Games3DS:   "Games3DS",
	GamesWii:   "GamesWii",
	Injections: "Injections",
	Updates:    "Updates",
	Updates3DS: "Updates3DS",
}

var partitionFiles = map[Partition]string{
	Customs:    "customs.json",
	Dlcs:       "dlcs.json",
	Dlcs3DS:    "dlcs3ds.json",
	Games:      "games.json",
	Games3DS:   "games3ds.json",
	GamesWii:   "gamesWii.json",
	Injections: "injections.json",
	Updates:    "updates.json",
	Updates3DS: "updates3ds.json",
}

// Partitions lists every storable partition in file order.
func Partitions() []Partition {
	return []Partition{Customs, Dlcs, Dlcs3DS, Games, Games3DS, GamesWii, Injections, Updates, Updates3DS}
}

func (p Partition) String() string {
	if name, ok := partitionNames[p]; ok {
		return name
	}
	return "Partition(?)"
}

// FileName returns the catalog file name, or "" for None.
func (p Partition) FileName() string {
	return partitionFiles[p]
}

// IsGamePartition reports whether records in p carry no meaningful version.
func (p Partition) IsGamePartition() bool {
	return p == Games || p == Games3DS || p == GamesWii
}

// IsUpdatePartition reports whether p holds update titles.
func (p Partition) IsUpdatePartition() bool {
	return p == Updates || p == Updates3DS
}

// IsDLCPartition reports whether p holds downloadable content.
func (p Partition) IsDLCPartition() bool {
	return p == Dlcs || p == Dlcs3DS
}

// ParsePartition resolves a partition by its String name.
func ParsePartition(name string) (Partition, bool) {
	for p, n := range partitionNames {
		if n == name && p != None {
			return p, true
		}
	}
	return None, false
}
