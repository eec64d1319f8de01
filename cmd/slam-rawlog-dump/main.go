// slam-rawlog-dump prints track-result records from a raw log file as
// JSON, one object per line.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"slam-feed-go/internal/output"
	"slam-feed-go/internal/types"
)

func main() {
	var (
		path  = flag.String("path", "", "Path to rawlog .bin file")
		limit = flag.Int("limit", 0, "Number of records to dump (0 = all)")
	)
	flag.Parse()

	if *path == "" {
		log.Fatal("path is required")
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open rawlog: %v", err)
	}
	defer f.Close()

	records, err := output.ReadRawLog(f)
	if err != nil {
		log.Fatalf("read rawlog: %v", err)
	}

	for i, rec := range records {
		if *limit > 0 && i >= *limit {
			return
		}
		var result types.TrackResult
		if err := cbor.Unmarshal(rec.Payload, &result); err != nil {
			log.Printf("record %d: decode failed: %v", i, err)
			continue
		}
		line, err := json.Marshal(map[string]any{
			"written_at": time.Unix(0, rec.WallNanos).Format(time.RFC3339Nano),
			"result":     result,
		})
		if err != nil {
			log.Printf("record %d: %v", i, err)
			continue
		}
		fmt.Println(string(line))
	}
}
