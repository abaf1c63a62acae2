// Command wadview opens a WAD, loads one level and walks it with the
// software renderer in an ebiten window.
//
//	wadview -wad doom1.wad -map E1M1
//
// WASD moves, the arrow keys turn.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/pkg/errors"

	"github.com/wadlight/wadlight/pkg/level"
	"github.com/wadlight/wadlight/pkg/render"
	"github.com/wadlight/wadlight/pkg/texture"
	"github.com/wadlight/wadlight/pkg/wad"
)

const (
	moveSpeed = 6    // map units per tick
	turnSpeed = 0.05 // radians per tick
)

// playerStartType is the THINGS type of the player 1 spawn point.
const playerStartType = 1

type game struct {
	renderer *render.Renderer
	lvl      *level.Level
	cam      *render.Camera
	bank     *texture.Bank

	rgba []byte
}

func (g *game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		g.cam.Turn(turnSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		g.cam.Turn(-turnSpeed)
	}

	var fwd, side float32
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		fwd += moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		fwd -= moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		side += moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		side -= moveSpeed
	}
	g.cam.Step(fwd, side)

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	fb := g.renderer.RenderFrame(g.lvl, g.cam, g.bank)
	for i, c := range fb {
		g.rgba[i*4] = byte(c >> 16)
		g.rgba[i*4+1] = byte(c >> 8)
		g.rgba[i*4+2] = byte(c)
		g.rgba[i*4+3] = byte(c >> 24)
	}
	screen.WritePixels(g.rgba)

	st := g.renderer.Stats()
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"%.0f fps | ssect %d segs %d cols %d | planes %d spans %d | culled %d overflow %d",
		ebiten.ActualFPS(), st.Subsectors, st.SegsDrawn, st.WallColumns,
		st.Planes, st.PlaneSpans, st.CulledSubtrees, st.PlaneOverflows))
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.renderer.Size()
}

func main() {
	var (
		wadPath = flag.String("wad", "", "path to an IWAD or PWAD")
		mapName = flag.String("map", "", "level marker name (default: first level in the WAD)")
		width   = flag.Int("width", 640, "render width in pixels")
		height  = flag.Int("height", 400, "render height in pixels")
		fov     = flag.Float64("fov", 90, "horizontal field of view in degrees")
		workers = flag.Int("workers", 1, "goroutines used for floor and ceiling spans")
	)
	flag.Parse()

	if *wadPath == "" {
		flag.Usage()
		log.Fatal("wadview: -wad is required")
	}

	g, err := setup(*wadPath, *mapName, *width, *height, *fov, *workers)
	if err != nil {
		log.Fatalf("wadview: %+v", err)
	}

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("wadview " + g.lvl.Name)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("wadview: %v", err)
	}
}

func setup(wadPath, mapName string, width, height int, fovDeg float64, workers int) (*game, error) {
	archive, err := wad.Open(wadPath)
	if err != nil {
		return nil, err
	}

	bank := texture.NewBank()
	if err := wad.LoadTextures(archive, bank); err != nil {
		return nil, err
	}

	marker, err := pickLevel(archive, mapName)
	if err != nil {
		return nil, err
	}

	rec, err := wad.ReadLevel(archive, marker, bank)
	if err != nil {
		return nil, err
	}
	lvl, err := level.Load(rec)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %s from %s: %d lumps, %d textures, %d subsectors",
		lvl.Name, wadPath, len(archive.Lumps), bank.Len(), len(lvl.Subsectors))

	cfg := render.DefaultConfig(width, height)
	cfg.FOV = float32(fovDeg * math.Pi / 180)
	cfg.SpanWorkers = workers

	pos, yaw := spawnPoint(lvl)
	cam := render.NewCamera(pos[0], pos[1])
	cam.Yaw = yaw

	return &game{
		renderer: render.New(cfg),
		lvl:      lvl,
		cam:      cam,
		bank:     bank,
		rgba:     make([]byte, width*height*4),
	}, nil
}

func pickLevel(a *wad.Archive, name string) (int, error) {
	markers := a.LevelIndices()
	if len(markers) == 0 {
		return 0, errors.New("WAD contains no levels")
	}
	if name == "" {
		return markers[0], nil
	}
	for _, m := range markers {
		if a.Lumps[m].Name == name {
			return m, nil
		}
	}
	return 0, errors.Errorf("no level %q in WAD", name)
}

// spawnPoint is the player 1 start, or the first vertex when the level
// carries no things.
func spawnPoint(lvl *level.Level) (mgl32.Vec2, float32) {
	for _, th := range lvl.Things {
		if th.Type == playerStartType {
			pos := mgl32.Vec2{float32(th.X), float32(th.Y)}
			yaw := float32(th.Angle) * math.Pi / 180
			return pos, yaw
		}
	}
	if len(lvl.Vertices) > 0 {
		return lvl.Vertices[0], 0
	}
	return mgl32.Vec2{}, 0
}
