package world

// Texture slots of the builtin atlas, 16 tiles per row.
const (
	texStone = iota
	texDirt
	texGrassTop
	texGrassSide
	texSand
	texSnow
	texLogTop
	texLogSide
	texLeaves
	texGlowstone
	texLamp
	texGlass
	texPlanks
)

// DefaultTextures names the builtin texture slots, indexed by slot.
var DefaultTextures = []string{
	"stone", "dirt", "grass_top", "grass_side", "sand", "snow",
	"log_top", "log_side", "leaves", "glowstone", "lamp", "glass", "planks",
}

// RegisterDefaults registers the builtin block set.
func RegisterDefaults(r *Registry) error {
	blocks := []struct {
		name  string
		draw  DrawKind
		light LightKind
	}{
		{"stone", SolidCube(texStone), Opaque()},
		{"dirt", SolidCube(texDirt), Opaque()},
		{"grass", Cube([6]int{texGrassSide, texGrassSide, texGrassTop, texDirt, texGrassSide, texGrassSide}), Opaque()},
		{"sand", SolidCube(texSand), Opaque()},
		{"snow", SolidCube(texSnow), Opaque()},
		{"log", Cube([6]int{texLogSide, texLogSide, texLogTop, texLogTop, texLogSide, texLogSide}), Opaque()},
		{"leaves", SolidCube(texLeaves), Transparent()},
		{"glowstone", SolidCube(texGlowstone), Emitter(MaxLight)},
		{"lamp", SolidCube(texLamp), Emitter(10)},
		{"glass", Invisible(), Transparent()},
		{"planks", SolidCube(texPlanks), Opaque()},
	}
	for _, b := range blocks {
		if _, err := r.Register(b.name, b.draw, b.light); err != nil {
			return err
		}
	}
	return nil
}
