package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/akmonengine/sat2d"
)

func main() {
	scenePath := flag.String("scene", "", "YAML scene file (defaults to two rotated squares)")
	ticks := flag.Int("ticks", 0, "number of Update calls, overrides the scene")
	tickSeconds := flag.Float64("tick", 0, "seconds fed to each Update call, overrides the scene")
	verbose := flag.Bool("v", false, "log every polygon at each tick")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	scene := DefaultScene()
	if *scenePath != "" {
		var err error
		scene, err = LoadScene(*scenePath)
		if err != nil {
			logger.Error("loading scene", "path", *scenePath, "error", err)
			os.Exit(1)
		}
	}
	if *ticks > 0 {
		scene.Ticks = *ticks
	}
	if *tickSeconds > 0 {
		scene.TickSeconds = *tickSeconds
	}

	world, handles, err := scene.Build()
	if err != nil {
		logger.Error("building world", "error", err)
		os.Exit(1)
	}

	names := make(map[sat2d.Handle]string, len(handles))
	for _, h := range handles {
		names[h.Handle] = h.Name
	}
	world.Events.Subscribe(sat2d.COLLISION_ENTER, func(event sat2d.Event) {
		e := event.(sat2d.CollisionEnterEvent)
		logger.Info("collision enter", "a", names[e.HandleA], "b", names[e.HandleB])
	})
	world.Events.Subscribe(sat2d.COLLISION_EXIT, func(event sat2d.Event) {
		e := event.(sat2d.CollisionExitEvent)
		logger.Info("collision exit", "a", names[e.HandleA], "b", names[e.HandleB])
	})

	logger.Info("world started",
		"polygons", world.Len(),
		"fixed_timestep", world.FixedTimestepSeconds(),
		"gravity", world.Gravity,
		"resolver", scene.Resolver,
	)

	for tick := range scene.Ticks {
		world.Update(scene.TickSeconds)

		logger.Info("tick",
			"tick", tick,
			"time", world.GetCurrentTimeSeconds(),
			"collisions", len(world.Collisions()),
		)
		for _, h := range handles {
			logPolygon(logger, world, h)
		}
	}
}

func logPolygon(logger *slog.Logger, world *sat2d.World, h NamedHandle) {
	body, err := world.GetPolygon(h.Handle)
	if err != nil {
		logger.Warn("polygon lookup", "name", h.Name, "error", err)
		return
	}
	colliding, err := world.IsColliding(h.Handle)
	if err != nil {
		logger.Warn("collision lookup", "name", h.Name, "error", err)
		return
	}

	logger.Debug("polygon",
		"name", h.Name,
		"handle", h.Handle,
		"position", body.Position(),
		"rotation", body.Rotation(),
		"velocity", body.Velocity(),
		"colliding", colliding,
	)
}
