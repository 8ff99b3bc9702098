package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"net/http"
	_ "net/http/pprof"

	"github.com/faiface/mainthread"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/voxelworld/console"
	"github.com/humboldt-xie/voxelworld/render"
	"github.com/humboldt-xie/voxelworld/world"
	"github.com/humboldt-xie/voxelworld/world/gen"
)

var (
	pprofPort      = flag.String("pprof", "", "http pprof port")
	configFile     = flag.String("config", "mods/blocks/config.yaml", "block and world config")
	texturePath    = flag.String("t", "", "write the texture atlas to this file")
	consoleAddr    = flag.String("console", "", "debug console listen address")
	seed           = flag.Int64("seed", 42, "world seed")
	renderDistance = flag.Int("r", 4, "render distance in chunks")
	workers        = flag.Int("workers", 3, "chunk generator workers")
)

const atlasTile = 16

func run() {
	config, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	reg := world.NewRegistry()
	if err := world.RegisterDefaults(reg); err != nil {
		log.Fatal(err)
	}
	atlas := render.DefaultAtlas(atlasTile)
	if err := config.Register(reg, atlas); err != nil {
		log.Fatal(err)
	}
	if *texturePath != "" {
		if err := atlas.Save(*texturePath); err != nil {
			log.Fatal(err)
		}
	}

	cfg := config.WorldConfig(flag.CommandLine)
	generator, err := gen.NewDefault(cfg.Seed, reg)
	if err != nil {
		log.Fatal(err)
	}
	w := world.New(cfg, reg, generator)
	defer w.Close()

	flags := console.DefaultFlags()
	go func() {
		if err := console.Serve(os.Stdin, os.Stdout, flags); err != nil {
			log.Print(err)
		}
	}()
	if *consoleAddr != "" {
		srv, err := console.Listen(*consoleAddr, flags)
		if err != nil {
			log.Fatal(err)
		}
		defer srv.Close()
		log.Printf("debug console on %s", srv.Addr())
	}

	spawn := mgl32.Vec3{0.5, float32(generator.SurfaceY(0, 0)) + 3, 0.5}
	game, err := NewGame(800, 600, w, flags, atlas, spawn)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	md := time.Second / 120
	d := md
	timer := time.NewTimer(d)
	for !game.ShouldClose() {
		<-timer.C
		start := time.Now()
		game.Update()
		d = md - time.Since(start)
		if d < 0 {
			d = 1
		}
		timer.Reset(d)
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	flag.Parse()
	go func() {
		if *pprofPort != "" {
			log.Fatal(http.ListenAndServe(*pprofPort, nil))
		}
	}()
	mainthread.Run(run)
}
