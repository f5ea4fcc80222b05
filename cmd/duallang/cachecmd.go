package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ali-185/DualLang"
	"github.com/ali-185/DualLang/cache"
	"github.com/ali-185/DualLang/config"
)

func (a *app) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Export or import the span cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "export <file>",
			Short: "Write every cached translation to a JSON file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withPersistentCache(func(tc duallang.TranslationCache) error {
					meta := map[string]string{
						"tool":    duallang.Name,
						"version": version,
						"cache":   a.cfg.Cache.Type,
					}
					if err := cache.NewExporter(tc).ExportToFile(args[0], meta); err != nil {
						return err
					}
					a.logger.Info("cache exported")
					fmt.Fprintf(a.stdout, "Exported cache to %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Load translations from a JSON export into the cache",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withPersistentCache(func(tc duallang.TranslationCache) error {
					res, err := cache.NewImporter(tc).ImportFromFile(args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(a.stdout, "Imported %d entries (%d failed)\n", res.Imported, res.Failed)
					return nil
				})
			},
		},
	)
	return cmd
}

// withPersistentCache runs fn with the configured cache, which must outlive
// the process.
func (a *app) withPersistentCache(fn func(duallang.TranslationCache) error) error {
	switch a.cfg.Cache.Type {
	case config.CacheRedis, config.CacheSQLite:
	default:
		return fmt.Errorf("cache export and import need --cache sqlite or --cache redis")
	}

	tc, closeCache, err := a.openCache()
	if err != nil {
		return err
	}
	defer closeCache()
	return fn(tc)
}
