// Command scoredraw scores a drawn character image against a rendered
// reference glyph and prints the result.
package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/drawscore/drawscore"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the drawn PNG image (required)")
	character := flag.String("char", "",
		"Character the drawing should match (required)")
	fontName := flag.String("font", "",
		"Reference font (empty uses the default font)")
	fontsDir := flag.String("fonts-dir", "fonts",
		"Directory containing TTF font files")
	asJSON := flag.Bool("json", false,
		"Print the full result as JSON")
	flag.Parse()

	if *inputFile == "" || *character == "" {
		fmt.Println("Please provide -input and -char")
		flag.PrintDefaults()
		return
	}

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatalf("reading %s: %v", *inputFile, err)
	}
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	fonts := drawscore.NewFontCache(*fontsDir)
	result, err := fonts.ScoreDrawing(encoded, *character, *fontName)
	if err != nil {
		log.Fatalf("scoring drawing: %v", err)
	}

	if *asJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("encoding result: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("score:      %d\n", result.Score)
	fmt.Printf("stars:      %d\n", result.Stars)
	fmt.Printf("feedback:   %s\n", result.Feedback)
	fmt.Printf("coverage:   %.1f\n", result.Details.Coverage)
	fmt.Printf("accuracy:   %.1f\n", result.Details.Accuracy)
	fmt.Printf("similarity: %.1f\n", result.Details.Similarity)
}
