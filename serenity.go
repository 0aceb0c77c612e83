package main

import (
	"flag"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/matthewjberger/serenity/config"
	"github.com/matthewjberger/serenity/gltfconv"
	"github.com/matthewjberger/serenity/status"
	"github.com/matthewjberger/serenity/utils"
	"github.com/matthewjberger/serenity/web"
	"github.com/matthewjberger/serenity/world"
)

func main() {
	var addr, configPath, worldPath string
	var dump bool
	flag.StringVar(&addr, "i", "", "Address of server (overrides config)")
	flag.StringVar(&configPath, "config", "", "Path to yaml config file")
	flag.StringVar(&worldPath, "world", "", "Path to a saved world json to load first")
	flag.BoolVar(&dump, "dump", false, "Dump the assembled world to stdout and exit")
	flag.Parse()

	if configPath != "" {
		if err := config.Load(configPath); err != nil {
			log.Fatal(err)
		}
	}
	config.SetListen(addr)
	config.AddAssets(flag.Args())

	status.SetRingCapacity(config.Current().StatusRing)
	status.SetWorldID(uuid.New())

	w := world.New()
	if worldPath != "" {
		f, err := os.Open(worldPath)
		if err != nil {
			log.Fatal(err)
		}
		loaded, err := world.Load(f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
		w = loaded
		status.Info("Loaded world %q: %d nodes", worldPath, len(w.Nodes))
	}

	for _, asset := range config.Current().Assets {
		source, err := gltfconv.LoadFile(asset)
		if err != nil {
			log.Fatal(err)
		}
		if err := world.MergeWorlds(w, source); err != nil {
			log.Fatal(err)
		}
		status.Info("Loaded %q: %d nodes", asset, len(source.Nodes))
		log.Printf("[serenity] Loaded %q: %d nodes, %d vertices", asset, len(source.Nodes), len(source.Vertices))
	}

	if dump {
		utils.Dump(w)
		return
	}

	if err := web.StartServer(config.Current().Listen, w); err != nil {
		log.Fatal(err)
	}
}
