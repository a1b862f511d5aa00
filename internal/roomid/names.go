package roomid

import "crypto/rand"

// Room names are "<Color> <Animal>" so players can tell rooms apart in the
// lobby without reading 26-character IDs.

var colors = []string{
	"Amber", "Azure", "Coral", "Crimson", "Emerald", "Golden", "Indigo",
	"Ivory", "Jade", "Lavender", "Maroon", "Olive", "Scarlet", "Silver",
	"Teal", "Violet",
}

var animals = []string{
	"Badger", "Falcon", "Fox", "Heron", "Lynx", "Marmot", "Otter", "Owl",
	"Panda", "Raven", "Salmon", "Stoat", "Tiger", "Viper", "Walrus", "Wolf",
}

// Name returns a human-readable room name using the generator's RandSource,
// falling back to crypto randomness when none was provided.
func (g *Generator) Name() string {
	if g.randSource != nil {
		return colors[g.randSource.IntN(len(colors))] + " " + animals[g.randSource.IntN(len(animals))]
	}
	b := make([]byte, 2)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	return colors[int(b[0])%len(colors)] + " " + animals[int(b[1])%len(animals)]
}

// Name returns a human-readable room name using crypto randomness.
func Name() string {
	return NewGenerator(nil).Name()
}
