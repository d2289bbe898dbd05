// Command ooze-anvil converts a directory of legacy Minecraft region
// (.mca) files into a single .ooze level file, driving Region Ingest ->
// Voxel Model -> Binary Codec end to end.
//
// Grounded on oriumgames-pile/convert/main.go's CLI shape (os.Args
// parsing, fmt.Println progress reporting, panic on hard failure),
// replacing its schematic->pile conversion with anvil->ooze.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/oriumgames/ooze/format"
	"github.com/oriumgames/ooze/region"
)

var regionFileName = regexp.MustCompile(`^r\.(-?\d+)\.(-?\d+)\.mca$`)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ooze-anvil <region-dir> <output.ooze>")
		fmt.Println("Example: ooze-anvil world/region overworld.ooze")
		os.Exit(1)
	}
	regionDir := os.Args[1]
	outputFile := os.Args[2]

	minSection, maxSection := int32(-4), int32(19)

	entries, err := os.ReadDir(regionDir)
	if err != nil {
		panic(fmt.Errorf("ooze-anvil: read region directory: %w", err))
	}

	loader := region.NewRegionDirectoryLoader(regionDir)
	defer loader.Close()

	builder := region.NewLevelBuilder(loader)
	regionCount := 0
	for _, entry := range entries {
		m := regionFileName.FindStringSubmatch(filepath.Base(entry.Name()))
		if m == nil {
			continue
		}
		regionX, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		regionZ, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		regionCount++
		baseX, baseZ := int32(regionX*32), int32(regionZ*32)
		builder.AddRect(baseX, baseZ, baseX+31, baseZ+31)
	}
	if regionCount == 0 {
		fmt.Println("No region files found, nothing to convert")
		os.Exit(1)
	}
	fmt.Printf("Found %d region files, ingesting chunks...\n", regionCount)

	level, err := builder.Build(minSection, maxSection)
	if err != nil {
		panic(fmt.Errorf("ooze-anvil: build level: %w", err))
	}
	fmt.Printf("Ingested %d chunks\n", level.ChunkCount())

	opts := format.DefaultEncodeOptions()
	if err := format.WriteFile(outputFile, level, opts); err != nil {
		panic(fmt.Errorf("ooze-anvil: write %s: %w", outputFile, err))
	}
	fmt.Printf("Wrote %s\n", outputFile)
}
