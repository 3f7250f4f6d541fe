package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/noah-isme/canvas-gateway-api/pkg/jobs"
)

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		userID      string
		timeout     time.Duration
		workers     int
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080/api/canvas", "Go gateway base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:5000/api/canvas", "Legacy Flask base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "Path to JSON targets file")
	flag.StringVar(&userID, "user-id", "", "User id sent with every request")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "HTTP client timeout")
	flag.IntVar(&workers, "workers", 4, "Concurrent comparisons")
	flag.Parse()

	if userID == "" {
		log.Fatal("-user-id is required")
	}

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	cmp := &comparer{
		client:     &http.Client{Timeout: timeout},
		goBase:     goBase,
		legacyBase: legacyBase,
		userID:     userID,
	}

	pool := jobs.NewPool[comparison]("shadow_compare", jobs.PoolConfig{MaxWorkers: workers})
	results := cmp.run(context.Background(), pool, targets)

	printReport(results)

	breaking, optional := tally(results)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func printReport(results []comparison) {
	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, res := range results {
		fmt.Printf("[%s] %s %s\n", res.verdict(), res.Target.Method, res.Target.Path)
		fmt.Printf("  Go Status: %d (%s)\n", res.GoStatus, res.DurationGo)
		fmt.Printf("  Legacy Status: %d (%s)\n", res.LegacyStatus, res.DurationLegacy)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
	}
}
