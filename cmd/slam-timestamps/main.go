// slam-timestamps generates a timestamps index for a directory of left
// PNG images, either evenly spaced at a fixed frame rate or from a CSV of
// recorded times.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"slam-feed-go/internal/dataset"
)

func main() {
	var (
		fps        = flag.Float64("fps", 0, "Frame rate for evenly spaced timestamps (mutually exclusive with -csv)")
		csvFile    = flag.String("csv", "", "CSV file containing recorded timestamps")
		timeCol    = flag.Int("time-column", 0, "Column index of the timestamp in the CSV")
		nameCol    = flag.Int("filename-column", -1, "Column index of the filename in the CSV (-1 = use sorted PNG files)")
		leftDir    = flag.String("left-dir", "", "Directory containing the left images")
		outputPath = flag.String("output", "timestamps.txt", "Output timestamps file")
	)
	flag.Parse()

	if *leftDir == "" {
		log.Fatal("left-dir is required")
	}
	if (*fps == 0) == (*csvFile == "") {
		log.Fatal("exactly one of -fps or -csv must be given")
	}

	names, err := dataset.ScanPNGs(*leftDir)
	if err != nil {
		log.Fatalf("scan %s: %v", *leftDir, err)
	}
	if len(names) == 0 {
		log.Fatalf("no PNG files found in %s", *leftDir)
	}

	var records []dataset.Record
	var origin string
	if *fps > 0 {
		records, err = dataset.FromFPS(names, *fps)
		if err != nil {
			log.Fatalf("%v", err)
		}
		origin = fmt.Sprintf("Generated timestamps for %d frames at %g fps", len(names), *fps)
	} else {
		f, err := os.Open(*csvFile)
		if err != nil {
			log.Fatalf("open csv: %v", err)
		}
		records, err = dataset.FromCSV(f, *timeCol, *nameCol, names)
		_ = f.Close()
		if err != nil {
			log.Fatalf("%v", err)
		}
		origin = fmt.Sprintf("Generated from %s", *csvFile)
	}

	if err := dataset.WriteIndex(*outputPath, origin, records); err != nil {
		log.Fatalf("write %s: %v", *outputPath, err)
	}
	log.Printf("wrote %s with %d timestamps", *outputPath, len(records))
}
