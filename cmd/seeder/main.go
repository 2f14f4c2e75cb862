package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/chorusqa/chorus"
	"github.com/chorusqa/chorus/core"
	"github.com/chorusqa/chorus/storage"
)

var posts = []string{
	"Spent the morning benchmarking the new cache layer, writeups coming soon.",
	"Hot take: most outages are just configuration changes wearing a disguise.",
	"The city finally fixed the bike lane on 5th, only took three years.",
	"Reading an old paper on log-structured merge trees, still holds up.",
	"Anyone else notice the metro schedule changed without announcement?",
	"Deployed on a Friday again. Pray for me.",
	"The new coffee place near the office has ruined all other coffee for me.",
	"Rewrote the retry logic for the third time. This time it's correct. Probably.",
	"Weather was perfect for the weekend hike up the northern ridge.",
	"Unpopular opinion: weekly planning meetings should be fortnightly at most.",
	"Finally migrated the last service off the legacy queue.",
	"The library extended evening hours, great news for night owls.",
	"My sourdough starter survived the vacation. Small victories.",
	"Watched the eclipse from the rooftop with half the building.",
	"Postmortem published for last week's incident, root cause was DNS. Again.",
	"The farmers market moved to the riverside lot starting next month.",
	"Switched the build to remote caching and shaved eight minutes off CI.",
	"New neighbors have a dog that howls along with ambulance sirens.",
	"Conference talk got accepted! Now I have to actually write it.",
	"The bridge repainting is done and it looks exactly the same.",
	"Profiling revealed the slow path was the fast path all along.",
	"Street festival this Saturday, expect the usual road closures downtown.",
	"Upgraded the database cluster with zero downtime. Knock on wood.",
	"The old cinema is reopening as a concert venue this fall.",
	"Wrote a little tool to diff config files across environments.",
	"First frost of the season hit the community garden overnight.",
	"The standup bot achieved sentience and now skips itself.",
	"Power was out on the east side for two hours this morning.",
	"Moved all the dashboards to the new observability stack.",
	"The annual book swap is back at the usual spot next weekend.",
	"Turns out the memory leak was in the metrics exporter. Irony noted.",
	"New bakery opened where the hardware store used to be.",
	"Quarterly roadmap review went surprisingly smoothly this time.",
	"The river path flooded again after last night's storm.",
	"Finally closed the ticket that was older than my tenure.",
	"Local orchestra is doing free open-air rehearsals all summer.",
	"Rolled back the feature flag before anyone noticed. Mostly.",
	"The recycling schedule changed, blue bins are now on Thursdays.",
	"Paired with the new hire all afternoon, fresh eyes catch everything.",
	"Sunset from the harbor was unreasonably good today.",
}

var (
	dbPath       = flag.String("db", "./archive_db", "BadgerDB database directory")
	seedFileName = flag.String("src", "", "file of seed post texts")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// seedSource stores one post per line under the source, in batches.
// Posts get sequential IDs and hourly timestamps ending now; every
// fourth post links back to the one before it.
func seedSource(ctx context.Context, content storage.ContentRepository, source, author string, lines iter.Seq[string], batchSize int) (int, error) {
	var texts []string
	for line := range lines {
		if line != "" {
			texts = append(texts, line)
		}
	}

	base := time.Now().Add(-time.Duration(len(texts)) * time.Hour)

	total := 0
	batch := make([]*core.ContentItem, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := content.AddItems(ctx, batch...); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for i, text := range texts {
		item := &core.ContentItem{
			Id:        core.ID(i + 1),
			Source:    source,
			Author:    author,
			Text:      text,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}
		if i > 0 && (i+1)%4 == 0 {
			item.LinkedIds = []core.ID{core.ID(i)}
		}
		batch = append(batch, item)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

// seedDiscussions attaches a drifted discussion group to every tenth post.
func seedDiscussions(ctx context.Context, discussions storage.DiscussionRepository, source string, count int) error {
	var groups []*core.DiscussionGroup
	for anchor := 10; anchor <= count; anchor += 10 {
		groups = append(groups, &core.DiscussionGroup{
			AnchorId: core.ID(anchor),
			Source:   source,
			HasDrift: true,
			Topics: []core.DriftTopic{
				{
					Label:     fmt.Sprintf("tangent under post %d", anchor),
					Keywords:  []string{"offtopic", "thread"},
					Phrases:   []string{"that reminds me of something else entirely"},
					Rationale: "comments wandered away from the original subject",
				},
			},
		})
	}
	if len(groups) == 0 {
		return nil
	}
	return discussions.AddDiscussionGroups(ctx, groups...)
}

func main() {
	arc, err := chorus.OpenArchive(*dbPath)
	if err != nil {
		panic(err)
	}
	defer arc.Close()

	ctx := context.Background()

	var lines iter.Seq[string]
	if *seedFileName != "" {
		lines, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		lines = linesFromSlice(posts)
	}

	// Materialize once so both sources see the same texts; a file
	// iterator can only be consumed a single time.
	var texts []string
	for line := range lines {
		texts = append(texts, line)
	}

	for _, source := range []string{"expert_alpha", "expert_beta"} {
		count, err := seedSource(ctx, arc.ContentRepository(), source, source+"_author", linesFromSlice(texts), 5)
		if err != nil {
			panic(err)
		}
		if err := seedDiscussions(ctx, arc.DiscussionRepository(), source, count); err != nil {
			panic(err)
		}
		slog.Info("seeded source", "source", source, "posts", count)
	}
}
