package main

import "github.com/dustin/go-humanize"

// parseSize interprets a human-readable size like "2M" or "500kb" for
// -autotune-modelsize (spec §6 "autotune model size constraint").
func parseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	return int64(n), err
}
