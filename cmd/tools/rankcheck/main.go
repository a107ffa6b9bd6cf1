package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Muhammadurasheed/scholarstream/internal/config"
	"github.com/Muhammadurasheed/scholarstream/internal/logger"
	"github.com/Muhammadurasheed/scholarstream/internal/match"
	"github.com/Muhammadurasheed/scholarstream/internal/snapshot"
	"github.com/Muhammadurasheed/scholarstream/internal/view"
)

// rankcheck fetches the catalog snapshot once, scores it against the
// profile, and prints the ranked result. Handy for tuning a profile without
// running the full service.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	limit := flag.Int("limit", 20, "max rows to print")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.ProfilePath == "" {
		log.Fatal("profile_path must be set in config")
	}
	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(false, false)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	client := snapshot.NewClient(cfg.SnapshotURL, func() string { return cfg.AuthToken }, zl)
	opps, err := client.Fetch(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	ranked := match.Rank(opps, profile)
	if len(ranked) > *limit {
		ranked = ranked[:*limit]
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Score", "Tier", "Priority", "Type", "Name", "Deadline", "Why"})
	for _, opp := range ranked {
		t.AppendRow(table.Row{
			opp.MatchScore,
			opp.MatchTier,
			opp.PriorityLevel,
			view.Categorize(opp),
			opp.Name,
			opp.Deadline,
			opp.MatchExplanation,
		})
	}
	t.Render()
}
