package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bqdigital/housekeeper/pkg/cli"
	"bqdigital/housekeeper/pkg/cms"
	"bqdigital/housekeeper/pkg/cms/storage"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the history store schema",
	Long: `Open the configured database and create any missing tables and indexes.
Running it against an initialized database changes nothing.`,
	RunE: initDatabase,
}

var seedFlags seedOptions

var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo sites, pages and objects",
	Long: `Load demo content with version history and recycle-bin entries so the
tasks have something to work on.

Examples:
  housekeeper db seed
  housekeeper db seed --sites 3 --pages 20 --versions 10 --deleted-age 60`,
	RunE: seedDatabase,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd, dbSeedCmd)

	dbSeedCmd.Flags().IntVar(&seedFlags.Sites, "sites", 2, "number of sites")
	dbSeedCmd.Flags().IntVar(&seedFlags.Pages, "pages", 5, "live pages per site")
	dbSeedCmd.Flags().IntVar(&seedFlags.Objects, "objects", 5, "live objects per site")
	dbSeedCmd.Flags().IntVar(&seedFlags.Versions, "versions", 4, "versions per page and object")
	dbSeedCmd.Flags().IntVar(&seedFlags.Deleted, "deleted", 3, "recycle-bin pages and objects per site")
	dbSeedCmd.Flags().IntVar(&seedFlags.DeletedAge, "deleted-age", 45, "age in days of the oldest recycle-bin entry")
}

func initDatabase(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return cli.NewCommandError("db init", err)
	}
	defer a.close()

	if err := a.store.Ping(cmd.Context()); err != nil {
		return cli.NewCommandError("db init", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Schema ready (%s %s)\n", cfg.Database.Backend, cfg.Database.DSN)
	return nil
}

func seedDatabase(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Backend == "memory" {
		return cli.NewCommandError("db seed", fmt.Errorf("the memory backend does not persist between commands"))
	}
	a, err := newApp(cfg)
	if err != nil {
		return cli.NewCommandError("db seed", err)
	}
	defer a.close()

	progress := cli.NewProgressReporter(cmd.ErrOrStderr(), "records")
	stats, err := seedDemoData(cmd.Context(), a.store, seedFlags, progress, time.Now())
	if err != nil {
		progress.Error(err)
		return cli.NewCommandError("db seed", err)
	}
	progress.Finish()

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded %d sites, %d documents, %d page versions and %d object versions\n",
		stats.Sites, stats.Documents, stats.PageVersions, stats.ObjectVersions)
	return nil
}

type seedOptions struct {
	Sites      int
	Pages      int
	Objects    int
	Versions   int
	Deleted    int
	DeletedAge int
}

type seedStats struct {
	Sites          int
	Documents      int
	PageVersions   int
	ObjectVersions int
}

func (o seedOptions) total() int64 {
	perSite := o.Pages*(1+o.Versions) + o.Objects*o.Versions + 2*o.Deleted
	return int64(o.Sites * (1 + perSite))
}

// Deleted pages no longer have a document, so their IDs come from a
// range live documents never reach.
const deletedDocumentBase = 1_000_000

// seedDemoData writes demo content to store. Recycle-bin entries are
// spread between now and DeletedAge days ago so a clear task with a
// cutoff in between removes some and keeps the rest.
func seedDemoData(ctx context.Context, store storage.Backend, o seedOptions, progress cli.ProgressReporter, now time.Time) (seedStats, error) {
	var stats seedStats
	var done int64
	step := func() {
		done++
		progress.Update(done)
	}

	progress.Start(o.total())
	for s := 0; s < o.Sites; s++ {
		name := "site-" + string(rune('a'+s%26))
		if s >= 26 {
			name = fmt.Sprintf("site-%d", s)
		}
		site, err := store.CreateSite(ctx, name)
		if err != nil {
			return stats, err
		}
		stats.Sites++
		step()

		for p := 0; p < o.Pages; p++ {
			doc, err := store.CreateDocument(ctx, cms.Document{
				SiteID:    site.ID,
				Name:      fmt.Sprintf("Page %d", p+1),
				AliasPath: fmt.Sprintf("/page-%d", p+1),
				Published: true,
			})
			if err != nil {
				return stats, err
			}
			stats.Documents++
			step()

			for v := 0; v < o.Versions; v++ {
				_, err := store.AddPageVersion(ctx, cms.PageVersion{
					DocumentID:   doc.DocumentID,
					DocumentName: doc.Name,
					AliasPath:    doc.AliasPath,
					SiteID:       site.ID,
					ModifiedWhen: now.AddDate(0, 0, v-o.Versions),
				})
				if err != nil {
					return stats, err
				}
				stats.PageVersions++
				step()
			}
		}

		for obj := 0; obj < o.Objects; obj++ {
			for v := 1; v <= o.Versions; v++ {
				_, err := store.AddObjectVersion(ctx, cms.ObjectVersion{
					ObjectType:    "cms.form",
					ObjectID:      s*1000 + obj + 1,
					DisplayName:   fmt.Sprintf("Form %d", obj+1),
					SiteID:        site.ID,
					VersionNumber: v,
					ModifiedWhen:  now.AddDate(0, 0, v-o.Versions),
				})
				if err != nil {
					return stats, err
				}
				stats.ObjectVersions++
				step()
			}
		}

		for d := 0; d < o.Deleted; d++ {
			deleted := now.AddDate(0, 0, -deletedAge(o, d))

			_, err := store.AddPageVersion(ctx, cms.PageVersion{
				DocumentID:   deletedDocumentBase + s*1000 + d,
				DocumentName: fmt.Sprintf("Old page %d", d+1),
				AliasPath:    fmt.Sprintf("/archive/old-page-%d", d+1),
				SiteID:       site.ID,
				ModifiedWhen: deleted,
				DeletedWhen:  &deleted,
			})
			if err != nil {
				return stats, err
			}
			stats.PageVersions++
			step()

			_, err = store.AddObjectVersion(ctx, cms.ObjectVersion{
				ObjectType:    "cms.form",
				ObjectID:      deletedDocumentBase + s*1000 + d,
				DisplayName:   fmt.Sprintf("Retired form %d", d+1),
				SiteID:        site.ID,
				VersionNumber: 1,
				ModifiedWhen:  deleted,
				DeletedWhen:   &deleted,
			})
			if err != nil {
				return stats, err
			}
			stats.ObjectVersions++
			step()
		}
	}
	return stats, nil
}

// deletedAge spreads entry d of o.Deleted evenly up to o.DeletedAge days.
func deletedAge(o seedOptions, d int) int {
	if o.Deleted <= 1 {
		return o.DeletedAge
	}
	return 1 + d*(o.DeletedAge-1)/(o.Deleted-1)
}
