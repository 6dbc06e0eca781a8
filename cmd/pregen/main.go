// Command pregen fills the guide cache with tracing guides for every
// supported character, so an app server never pays the generation cost
// on first request.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/drawscore/drawscore"
	"github.com/drawscore/drawscore/guidecache"
)

func main() {
	dbPath := flag.String("db", "guides.db",
		"Path to the guide cache database")
	size := flag.Int("size", drawscore.DefaultGuideSize,
		"Pixel size of generated guide images")
	fontName := flag.String("font", "",
		"Font to generate guides for (empty uses the default font)")
	fontsDir := flag.String("fonts-dir", "fonts",
		"Directory containing TTF font files")
	clear := flag.Bool("clear", false,
		"Clear all cached guides before generating")
	statsOnly := flag.Bool("stats", false,
		"Print cache statistics and exit")
	flag.Parse()

	store, err := guidecache.Open(*dbPath)
	if err != nil {
		log.Fatalf("opening guide cache %s: %v", *dbPath, err)
	}
	defer store.Close()

	if *statsOnly {
		printStats(store)
		return
	}

	if *clear {
		if err := store.Clear(); err != nil {
			log.Fatalf("clearing guide cache: %v", err)
		}
		log.Println("cleared guide cache")
	}

	fonts := drawscore.NewFontCache(*fontsDir)
	generated, err := store.PregenerateAll(*size, *fontName, fonts.GenerateAllGuides)
	if err != nil {
		log.Printf("some guides failed: %v", err)
	}
	log.Printf("generated %d guides at size %d", generated, *size)

	printStats(store)
}

func printStats(store *guidecache.Store) {
	stats, err := store.Stats()
	if err != nil {
		log.Fatalf("reading cache stats: %v", err)
	}
	fmt.Printf("cached guides: %d\n", stats.CachedCount)
	if len(stats.Fonts) > 0 {
		fmt.Printf("fonts: %s\n", strings.Join(stats.Fonts, ", "))
	}
	for _, font := range stats.Fonts {
		fmt.Printf("  %s: %d\n", font, stats.ByFont[font])
	}
}
