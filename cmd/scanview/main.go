// Command scanview accepts one scanning agent over WebSocket and shows its
// scans as a voxel cube.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"

	"github.com/Eirikalv1/cc-websockets/internal/config"
	"github.com/Eirikalv1/cc-websockets/internal/link"
	"github.com/Eirikalv1/cc-websockets/internal/logging"
	"github.com/Eirikalv1/cc-websockets/internal/meshing"
	"github.com/Eirikalv1/cc-websockets/internal/metrics"
	"github.com/Eirikalv1/cc-websockets/internal/physics"
	"github.com/Eirikalv1/cc-websockets/internal/viewer"
	"github.com/Eirikalv1/cc-websockets/internal/world"
)

func init() {
	// GLFW and GL must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(os.Stdout, "[scanview] ", cfg.LogLevel())

	volume, err := world.NewVolume(cfg.Scan.Radius)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(2)
	}
	grid := world.NewGrid(volume)
	m := metrics.New()

	server := link.NewServer(cfg.Link, log.With("[link] "), m)
	closer.Bind(func() {
		if err := server.Close(); err != nil {
			log.Warnf("closing link: %v", err)
		}
	})
	go func() {
		if err := server.ListenAndServe(); err != nil {
			log.Errorf("link: %v", err)
			closer.Close()
		}
	}()
	log.Infof("scan radius %d, %d cells", volume.Radius, volume.Size())

	session := viewer.NewSession(grid, viewer.Options{
		Limits: meshing.Limits{MaxVertices: cfg.Mesh.MaxVertices, MaxIndices: cfg.Mesh.MaxIndices},
		Pick: physics.PickOptions{
			MaxSteps:         cfg.Pick.MaxSteps,
			MaxDistance:      cfg.Pick.MaxDistance,
			SurfaceThreshold: cfg.Pick.SurfaceThreshold,
		},
	}, log, m)

	if err := glfw.Init(); err != nil {
		log.Errorf("glfw: %v", err)
		closer.Exit(1)
	}
	window, err := viewer.SetupWindow(cfg.Window)
	if err != nil {
		glfw.Terminate()
		log.Errorf("window: %v", err)
		closer.Exit(1)
	}

	app, err := viewer.NewApp(cfg, window, server, session, log)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		log.Errorf("renderer: %v", err)
		closer.Exit(1)
	}

	app.Run()

	app.Close()
	window.Destroy()
	glfw.Terminate()
	closer.Close()
}
